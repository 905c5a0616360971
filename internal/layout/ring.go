// Package layout computes deterministic radial map placements for the
// nearby-work view: jobs and workers spread evenly around a circle,
// with workers on a fixed outer ring and jobs alternating between two
// inner rings.
package layout

import "math"

// Item kinds on the radial map
const (
	KindJob    = "job"
	KindWorker = "worker"
)

const (
	workerRadius  = 140.0
	jobBaseRadius = 100.0
	jobRingStep   = 60.0
)

// Item is anything placeable on the map
type Item struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// Position is a placed item in map coordinates, origin at the center
type Position struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Angle  float64 `json:"angle"`
	Radius float64 `json:"radius"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Place spreads items evenly around the circle in input order. The
// same input always yields the same placement. Angle for item i of n
// is i*360/n degrees; workers sit at a fixed radius, jobs alternate
// between two rings by index parity.
func Place(items []Item) []Position {
	n := len(items)
	if n == 0 {
		return nil
	}

	positions := make([]Position, 0, n)

	for i, item := range items {
		angle := float64(i) * 360.0 / float64(n)

		radius := jobBaseRadius + float64(i%2)*jobRingStep
		if item.Kind == KindWorker {
			radius = workerRadius
		}

		rad := angle * math.Pi / 180.0

		positions = append(positions, Position{
			ID:     item.ID,
			Kind:   item.Kind,
			Angle:  angle,
			Radius: radius,
			X:      math.Cos(rad) * radius,
			Y:      math.Sin(rad) * radius,
		})
	}

	return positions
}
