// Package layout places wall entries on an expanding spiral.
package layout

import (
	"math"
	"strconv"

	"name_wall/internal/domain/entity"
)

const (
	// angleStep is one fifth of a turn.
	angleStep = 2 * math.Pi / 5
	// angleGrowth is added per index on top of angleStep so the arms drift apart.
	angleGrowth = 0.5
	baseRadius  = 80.0
	radiusStep  = 25.0
	// rotationScale converts the angle (radians) into the label rotation in degrees.
	rotationScale = 10.0
	delayStep     = 0.1
	centerPercent = 50
)

// SpiralPosition returns where the entry at index is drawn.
// total is accepted for symmetry with callers that know the list size; the position depends on index only.
func SpiralPosition(index, total int) entity.SpiralPosition {
	_ = total
	i := float64(index)
	angle := i*angleStep + i*angleGrowth
	radius := baseRadius + i*radiusStep

	x := math.Cos(angle) * radius
	y := math.Sin(angle) * radius

	return entity.SpiralPosition{
		Index:          index,
		Left:           "calc(" + strconv.Itoa(centerPercent) + "% + " + formatNumber(x) + "px)",
		Top:            "calc(" + strconv.Itoa(centerPercent) + "% + " + formatNumber(y) + "px)",
		Transform:      "translate(-50%, -50%) rotate(" + formatNumber(angle*rotationScale) + "deg)",
		AnimationDelay: formatNumber(i*delayStep) + "s",
		X:              x,
		Y:              y,
		Angle:          angle,
	}
}

// Entries lays out every name in order.
func Entries(names []string) []entity.WallEntry {
	entries := make([]entity.WallEntry, len(names))
	for i, name := range names {
		entries[i] = entity.WallEntry{
			Name:     name,
			Member:   i + 1,
			Position: SpiralPosition(i, len(names)),
		}
	}
	return entries
}

// formatNumber prints the shortest decimal that round-trips, the way browsers print numbers in CSS strings.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
