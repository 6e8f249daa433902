package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nestlayout/pkg/scene"
)

// describeCommand creates the describe command, which prints the engine
// description of a scene instead of laying it out.
func (c *CLI) describeCommand() *cobra.Command {
	var shallow bool

	cmd := &cobra.Command{
		Use:   "describe [path-to-file.json]",
		Short: "Print the layout engine description of a scene",
		Long: `Print the layout engine description of a scene as JSON.

Missing ids are generated first. By default the whole tree is described, with
each child carrying its own children and edges. With --shallow the output is
exactly what is sent to the engine for the root container: one level of
children, each with ports for the edge endpoints it owns.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDescribe(cmd.Context(), args, shallow)
		},
	}
	cmd.Flags().BoolVar(&shallow, "shallow", false, "describe only the root container, with ports")
	return cmd
}

func (c *CLI) runDescribe(ctx context.Context, args []string, shallow bool) error {
	data, err := c.readInput(args)
	if err != nil {
		return err
	}
	root, err := scene.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(ctx)
	opts.Shallow = shallow
	g, err := runner.Describe(ctx, root, opts)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encode description: %w", err)
	}
	_, err = fmt.Fprintf(c.Stdout, "%s\n", out)
	return err
}
