// Package pipeline provides the decode → assign ids → layout → encode
// pipeline shared by the CLI and the HTTP server.
//
// # Usage
//
//	runner := pipeline.NewRunner(graphviz.New(), c, nil, logger)
//	defer runner.Close()
//
//	result, err := runner.Process(ctx, os.Stdin, os.Stdout, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	logger.Debug("done", "shapes", result.Stats.Shapes)
//
// Stages can also be run on an already decoded tree with [Runner.Execute]
// and [Runner.Describe].
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nestlayout/pkg/scene"
)

// Options configures one run.
type Options struct {
	// IDStart seeds the id counter. Zero means the current time.
	IDStart time.Time

	// Shallow selects the one-level description in Describe. The default
	// describes the whole tree.
	Shallow bool

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// ValidateAndSetDefaults fills in zero values.
func (o *Options) ValidateAndSetDefaults() error {
	if o.IDStart.IsZero() {
		o.IDStart = time.Now()
	}
	return nil
}

// Result describes a completed run.
type Result struct {
	// Scene is the laid out tree. It is the input tree, mutated in place.
	Scene *scene.Node

	// AssignedIDs counts the identifiers generated for this run.
	AssignedIDs int

	// Stats summarizes the tree.
	Stats scene.Stats

	// LayoutTime is the time spent in the layout driver.
	LayoutTime time.Duration
}
