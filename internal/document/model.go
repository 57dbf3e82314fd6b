package document

// RecordVersion is written into every saved scene record.
const RecordVersion = 1

// BoxSize is the edge length of the local box every shape's geometry lives in.
const BoxSize = 100.0

// SceneRecord is the durable form of a scene. It carries data only; all
// interactive behaviour is re-attached by the engine after decoding.
type SceneRecord struct {
	Version   int            `json:"version,omitempty"`
	Staging   []EntityRecord `json:"staging"`
	Workspace []EntityRecord `json:"workspace"`
	Transform *Transform     `json:"transform"`
}

// EntityRecord is one shape inside a SceneRecord.
// Position is only written for workspace entities.
type EntityRecord struct {
	ID        string       `json:"id,omitempty"`
	Geometry  [][2]float64 `json:"geometry"`
	FillColor string       `json:"fillColor"`
	Position  *Point       `json:"position,omitempty"`
}

type Container string

const (
	ContainerStaging   Container = "staging"
	ContainerWorkspace Container = "workspace"
)

// Valid reports whether c names one of the two drop containers.
func (c Container) Valid() bool {
	return c == ContainerStaging || c == ContainerWorkspace
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Transform is the workspace pan/zoom state.
type Transform struct {
	Scale  float64 `json:"scale"`
	Offset Point   `json:"offset"`
}

// IdentityTransform returns the reset state: scale 1, no offset.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// NewEmptyRecord returns a record with both containers empty and an identity transform.
func NewEmptyRecord() *SceneRecord {
	t := IdentityTransform()
	return &SceneRecord{
		Version:   RecordVersion,
		Staging:   []EntityRecord{},
		Workspace: []EntityRecord{},
		Transform: &t,
	}
}
