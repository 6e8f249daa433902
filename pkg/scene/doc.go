// Package scene models the nested scene trees that nestlayout lays out.
//
// A scene is a JSON object tree. Each node may carry an "id", ordered
// "children", a "pointers" object and an opaque "registry" object. A node
// whose pointers have both a truthy "src" and a truthy "dst" is an edge; every
// other node is a shape. The distinction is made once, in [Node.UnmarshalJSON],
// and carried as [Node.Kind] from then on.
//
// Fields the layout does not interpret are preserved, so a decoded tree
// encodes back to the same document plus whatever ids and positions were added.
// Values keep their JSON type, numeric ids included. Object keys are written
// in sorted order rather than input order: the tree is decoded into maps, and
// no consumer of the output depends on key order.
//
// # Identifiers
//
// [IDAssigner] fills in missing ids. Its counter is explicit state: create one
// per tree (or per request) and pass it where ids are needed.
//
//	root, err := scene.Decode(os.Stdin)
//	scene.NewIDAssigner(time.Now()).Assign(root)
package scene
