package engine

import (
	"github.com/polystage/polystage/internal/document"
)

// BuildSceneGraph builds the workspace scene graph. Placed entities become
// children of a single workspace node carrying the viewport matrix, in
// workspace order, so later entities paint over earlier ones.
func BuildSceneGraph(scene *Scene, viewport Matrix2D) *SceneGraph {
	sg := NewSceneGraph()
	root := &SceneNode{
		ID:             string(document.ContainerWorkspace),
		Type:           "workspace",
		LocalTransform: viewport,
		WorldTransform: viewport,
	}
	sg.Root = root
	if scene == nil {
		return sg
	}

	for _, e := range scene.workspace {
		if e.Position == nil {
			continue
		}
		node := buildShapeNode(e, root)
		sg.NodesById[e.ID] = node
		root.Children = append(root.Children, node)
		root.Bounds = root.Bounds.Union(node.Bounds)
	}
	return sg
}

func buildShapeNode(e *Entity, parent *SceneNode) *SceneNode {
	local := Translate(e.Position.X, e.Position.Y)
	world := parent.WorldTransform.Multiply(local)
	return &SceneNode{
		ID:             e.ID,
		Type:           "shape",
		LocalTransform: local,
		WorldTransform: world,
		Path:           polygonPath(e.geometry),
		Fill:           e.FillColor,
		Position:       *e.Position,
		Bounds:         world.TransformRect(shapeBox),
	}
}

// shapeBox is the local box every shape's geometry lives in.
var shapeBox = Rect{Width: document.BoxSize, Height: document.BoxSize}

// polygonPath turns an outline into a closed path.
func polygonPath(points []document.Point) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	path := make([]PathCommand, 0, len(points)+1)
	path = append(path, PathCommand{"M", points[0].X, points[0].Y})
	for _, p := range points[1:] {
		path = append(path, PathCommand{"L", p.X, p.Y})
	}
	return append(path, PathCommand{"Z"})
}
