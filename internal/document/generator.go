package document

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/polystage/polystage/internal/typeid"
)

const (
	MinShapes = 5
	MaxShapes = 20
	MinSides  = 3
	MaxSides  = 7

	// ShapeRadius is the circumradius of generated polygons, centred in the local box.
	ShapeRadius = 40.0
)

// Generator produces batches of random staged shapes.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded from the runtime's random source.
func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededGenerator returns a generator with a fixed seed, for reproducible batches.
func NewSeededGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns between MinShapes and MaxShapes staged entity records.
func (g *Generator) Generate() []EntityRecord {
	count := MinShapes + g.rng.IntN(MaxShapes-MinShapes+1)
	out := make([]EntityRecord, count)
	for i := range out {
		sides := MinSides + g.rng.IntN(MaxSides-MinSides+1)
		out[i] = EntityRecord{
			ID:        typeid.NewShapeID(),
			Geometry:  RegularPolygon(sides, BoxSize/2, BoxSize/2, ShapeRadius),
			FillColor: g.color(),
		}
	}
	return out
}

func (g *Generator) color() string {
	return fmt.Sprintf("#%06x", g.rng.IntN(1<<24))
}

// RegularPolygon returns the vertices of a regular polygon inscribed in the
// circle of radius r around (cx, cy). The first vertex sits at angle 0.
func RegularPolygon(sides int, cx, cy, r float64) [][2]float64 {
	pts := make([][2]float64, sides)
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / float64(sides)
		pts[i] = [2]float64{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return pts
}
