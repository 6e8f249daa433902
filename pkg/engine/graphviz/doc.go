// Package graphviz implements [engine.Engine] on top of Graphviz.
//
// # Overview
//
// Graphviz's dot program is a layered (Sugiyama-style) layout, which matches
// the fixed configuration nestlayout asks for: top-to-bottom direction and 40
// units between nodes and between layers. Units are points; Graphviz works in
// inches, so every size is divided by 72 on the way in and multiplied on the
// way out.
//
// # Conversion
//
// [ToDOT] turns one level of an [engine.Graph] into DOT source. Children become
// fixed-size boxes, edges attach to the compass point of their port side
// (NORTH is "n", SOUTH is "s"). The graph is laid out in-process and rendered
// to Graphviz's "plain" format, whose node centers are converted back into
// top-left coordinates with the y axis pointing down.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly; no system installation is needed.
package graphviz
