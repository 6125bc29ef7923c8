package board

import (
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TagPalette holds the colors assigned to tags, in a fixed order so a tag
// keeps its color across runs and machines.
var TagPalette = []lipgloss.Color{
	lipgloss.Color("#EF4444"), // red
	lipgloss.Color("#F97316"), // orange
	lipgloss.Color("#EAB308"), // yellow
	lipgloss.Color("#22C55E"), // green
	lipgloss.Color("#06B6D4"), // cyan
	lipgloss.Color("#3B82F6"), // blue
	lipgloss.Color("#A855F7"), // purple
	lipgloss.Color("#EC4899"), // pink
}

// ColorFor picks the palette color for a tag name. The choice is a pure
// function of the lowercased name, so the same tag is rendered identically
// everywhere regardless of how its name was typed.
func ColorFor(tag string) lipgloss.Color {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(tag)))
	return TagPalette[h.Sum32()%uint32(len(TagPalette))]
}

// TagStyle returns a lipgloss style rendering a tag label in its color.
func TagStyle(tag string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorFor(tag)).Bold(true)
}
