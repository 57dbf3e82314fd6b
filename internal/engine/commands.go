package engine

import "github.com/polystage/polystage/internal/document"

// DrawCommand represents a single drawing operation for the frontend to execute.
type DrawCommand struct {
	Op        string          `json:"op"`                  // "path"
	ObjectID  string          `json:"objectId,omitempty"`  // For hit correlation
	Transform []float64       `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	Path      []PathCommand   `json:"path,omitempty"`
	Fill      string          `json:"fill,omitempty"`
	Position  *document.Point `json:"position,omitempty"` // World position of the box
}

// StagedShape is a shape waiting in the staging tray. Staged shapes are
// drawn untransformed at tray size.
type StagedShape struct {
	ID   string        `json:"id"`
	Fill string        `json:"fill"`
	Path []PathCommand `json:"path"`
}

// Frame is everything a host needs to draw the editor.
type Frame struct {
	Transform string        `json:"transform"` // CSS transform for the workspace layer
	Matrix    []float64     `json:"matrix"`
	Scale     float64       `json:"scale"`
	Rulers    Rulers        `json:"rulers"`
	Staging   []StagedShape `json:"staging"`
	Workspace []DrawCommand `json:"workspace"`
	Dragging  string        `json:"dragging,omitempty"`
}

// CompileDrawCommands generates a draw command buffer from a scene graph.
// Commands are in painter's order (back to front).
func CompileDrawCommands(sg *SceneGraph) []DrawCommand {
	commands := []DrawCommand{}
	if sg == nil || sg.Root == nil {
		return commands
	}
	compileNode(sg.Root, &commands)
	return commands
}

func compileNode(node *SceneNode, commands *[]DrawCommand) {
	if node == nil {
		return
	}
	if len(node.Path) > 0 {
		pos := node.Position
		*commands = append(*commands, DrawCommand{
			Op:        "path",
			ObjectID:  node.ID,
			Transform: node.WorldTransform.ToSlice(),
			Path:      node.Path,
			Fill:      node.Fill,
			Position:  &pos,
		})
	}
	for _, child := range node.Children {
		compileNode(child, commands)
	}
}

// HitTest performs a hit test on the scene graph at the given point.
// Returns the ID of the topmost (frontmost) object containing the point, or empty string.
func HitTest(sg *SceneGraph, x, y float64) string {
	if sg == nil || sg.Root == nil {
		return ""
	}
	return hitTestNode(sg.Root, x, y)
}

// hitTestNode tests children first since they're on top in painter's order.
func hitTestNode(node *SceneNode, x, y float64) string {
	if node == nil {
		return ""
	}
	for i := len(node.Children) - 1; i >= 0; i-- {
		if hit := hitTestNode(node.Children[i], x, y); hit != "" {
			return hit
		}
	}
	if len(node.Path) > 0 && !node.Bounds.IsEmpty() && node.Bounds.Contains(x, y) {
		// Bounds is only a coarse screen box; the exact test happens in
		// the shape's own 100x100 box.
		local := node.WorldTransform.Invert().Apply(document.Point{X: x, Y: y})
		if shapeBox.Contains(local.X, local.Y) {
			return node.ID
		}
	}
	return ""
}
