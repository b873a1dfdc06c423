package tables

import (
	"strings"

	"github.com/bszet/vertretungsbot/model"
)

// Clusterer groups positioned text fragments into lines. It flips the
// source's bottom-up vertical axis into reading order and adds a cumulative
// page offset so positions are strictly comparable across the whole
// document.
type Clusterer struct {
	// SubPositionLimit separates text-space translations that are local
	// sub-line adjustments (sub/superscript-style micro-offsets common in
	// justified table text) from absolute placements. Offsets below the
	// limit are added to the fragment's base position; offsets at or above
	// it are ignored.
	SubPositionLimit float64
}

// NewClusterer creates a clusterer with default settings.
func NewClusterer() *Clusterer {
	return &Clusterer{
		SubPositionLimit: 1000, // device-space units
	}
}

// Cluster builds the line map for a whole document. Fragments sharing a
// vertical key end up on the same line; empty fragments are dropped.
func (c *Clusterer) Cluster(pages []model.Page) model.Elements {
	elements := make(model.Elements)
	offset := 0.0
	for _, page := range pages {
		for _, frag := range page.Fragments {
			text := strings.TrimSpace(frag.Text)
			if text == "" {
				continue
			}
			x := frag.X
			y := -frag.Y + offset
			if frag.OffsetY < c.SubPositionLimit {
				x += frag.OffsetX
				y += frag.OffsetY
			}
			elements.Add(y, x, text)
		}
		offset += page.Height
	}
	return elements
}
