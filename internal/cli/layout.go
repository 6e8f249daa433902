package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/nestlayout/pkg/pipeline"
)

// runLayout reads the scene, lays it out and writes the result to stdout or
// to output. Nothing is written when any stage fails.
func (c *CLI) runLayout(ctx context.Context, args []string, output string) error {
	data, err := c.readInput(args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	var buf bytes.Buffer
	result, err := runner.Process(ctx, bytes.NewReader(data), &buf, c.pipelineOptions(ctx))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d containers", result.Stats.Containers))

	if output == "" {
		_, err := io.Copy(c.Stdout, &buf)
		return err
	}

	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	printSuccess(c.Stderr, "Layout complete")
	printFile(c.Stderr, output)
	printStats(c.Stderr, result)
	return nil
}

// layoutSummary is the status line content for a finished run.
func layoutSummary(r *pipeline.Result) []string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d shapes", r.Stats.Shapes))
	if r.Stats.Edges > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", r.Stats.Edges))
	}
	parts = append(parts, fmt.Sprintf("%d containers", r.Stats.Containers))
	if r.AssignedIDs > 0 {
		parts = append(parts, fmt.Sprintf("%d ids generated", r.AssignedIDs))
	}
	return parts
}
