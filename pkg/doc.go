// Package pkg provides the core libraries for nestlayout.
//
// # Overview
//
// Nestlayout positions the nodes of a nested JSON scene graph. Every node that
// has children is a container; its children are laid out by a hierarchical
// layout engine, innermost containers first, and each child receives a
// registry.position. The pkg directory is organized into these areas:
//
//  1. [scene] - The scene tree: decoding, id assignment, encoding
//  2. [engine] - The engine graph description and the engine contract
//  3. [layout] - Translation to engine descriptions, the recursive driver, merging
//  4. [pipeline] - Orchestration (decode → assign ids → layout → encode)
//  5. [cache] - Cached engine results (file, Redis, MongoDB)
//
// # Architecture
//
// The data flow through nestlayout:
//
//	Scene JSON
//	     ↓
//	[scene] package (decode, classify edges, assign ids)
//	     ↓
//	[layout] package (post-order walk, one engine call per container)
//	     ↓
//	[engine/graphviz] package (dot layout of one level)
//	     ↓
//	Scene JSON with registry.position
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/nestlayout/pkg/engine/graphviz"
//	    "github.com/matzehuels/nestlayout/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(graphviz.New(), nil, nil, logger)
//	defer runner.Close()
//	result, err := runner.Process(ctx, os.Stdin, os.Stdout, pipeline.Options{})
//
// # Main Packages
//
// [errors] - Structured error codes shared by the CLI and the HTTP server.
// Malformed-reference errors carry the offending JSON fragment.
//
// [observability] - Hooks for container layouts, cache events and HTTP
// requests, with a Prometheus implementation.
//
// [buildinfo] - Version information set via ldflags.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/layout/...    # Specific package
//
// Tests use [engine/enginetest] for deterministic positions; only the
// [engine/graphviz] tests run the real engine.
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/scene
// [engine]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/engine
// [engine/graphviz]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/engine/graphviz
// [engine/enginetest]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/engine/enginetest
// [layout]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/nestlayout/pkg/buildinfo
package pkg
