// Package layout positions the nodes of a scene tree with a hierarchical
// layout engine.
//
// The work happens in three steps per container:
//
//  1. [BuildContainer] translates the container and its children into an
//     [engine.Graph]. Edge pseudo-nodes become engine edges between the
//     children that own their endpoints; the endpoints become ports.
//  2. The engine computes positions for the children.
//  3. [Merge] writes each child's position into its registry.
//
// [Driver] applies these steps to every container of a tree, innermost first,
// one container at a time:
//
//	d := layout.NewDriver(graphviz.New(), logger)
//	if err := d.Layout(ctx, root); err != nil {
//	    return err
//	}
//
// [CachedEngine] wraps an engine with a [cache.Cache] so repeated layouts of
// identical containers skip the engine.
package layout
