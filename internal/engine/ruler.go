package engine

import "math"

// RulerStep is the world-space distance between ruler ticks.
const RulerStep = 100.0

// Tick is one labelled ruler segment.
type Tick struct {
	Label  float64 `json:"label"`  // world coordinate at the tick start
	Offset float64 `json:"offset"` // screen distance from the ruler start
	Size   float64 `json:"size"`   // screen length of the segment
}

// Rulers is the tick layout for both axes.
type Rulers struct {
	X []Tick `json:"x"`
	Y []Tick `json:"y"`
}

// GenerateRulers lays out ticks for a viewport of the given pixel size.
// The result is derived state; callers replace the previous layout with it.
func GenerateRulers(scale, width, height float64) Rulers {
	return Rulers{
		X: axisTicks(scale, width),
		Y: axisTicks(scale, height),
	}
}

func axisTicks(scale, extent float64) []Tick {
	if !(scale > 0) || !(extent > 0) {
		return []Tick{}
	}
	size := RulerStep * scale
	count := int(math.Floor(extent / size))
	ticks := make([]Tick, count)
	for i := range ticks {
		ticks[i] = Tick{
			Label:  float64(i) * RulerStep,
			Offset: float64(i) * size,
			Size:   size,
		}
	}
	return ticks
}
