package layout

import (
	"strings"

	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/errors"
	"github.com/matzehuels/nestlayout/pkg/scene"
)

// Merge writes the position computed for each shape child of n into the
// child's registry. Every shape child must appear in result.
func Merge(n *scene.Node, result *engine.Graph) error {
	for _, c := range n.Shapes() {
		d, ok := result.Child(c.ID)
		if !ok {
			return errors.New(errors.ErrCodeLayoutMismatch,
				"could not find %q in [%s]", c.ID, strings.Join(result.ChildIDs(), ", "))
		}
		c.SetPosition(d.X, d.Y)
	}
	return nil
}
