package entity

import "html/template"

// SpiralPosition is where a wall entry is drawn relative to the spiral container.
type SpiralPosition struct {
	Index          int     `json:"index"`
	Left           string  `json:"left"`
	Top            string  `json:"top"`
	Transform      string  `json:"transform"`
	AnimationDelay string  `json:"animationDelay"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Angle          float64 `json:"angle"`
}

// Style renders the position as an inline CSS declaration list.
// Values are generated from numbers only, so marking them safe is fine.
func (p SpiralPosition) Style() template.CSS {
	return template.CSS("left: " + p.Left + "; top: " + p.Top + "; transform: " + p.Transform + "; animation-delay: " + p.AnimationDelay + ";")
}

// WallEntry is one name placed on the spiral.
type WallEntry struct {
	Name     string         `json:"name"`
	Member   int            `json:"member"`
	Position SpiralPosition `json:"position"`
}
