package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots per cell, Unicode offset 0x2800.
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// phasePalette cycles through 256-color codes roughly matching the hue
// wheel, so nearby phases render in nearby colors.
var phasePalette = []string{
	"196", "208", "220", "154", "46", "49", "51", "33", "57", "93", "201", "198",
}

var phaseStyles = func() []lipgloss.Style {
	styles := make([]lipgloss.Style, len(phasePalette))
	for i, c := range phasePalette {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return styles
}()

// Canvas is a braille pixel grid where every cell carries the phase bucket
// of the agent drawn into it last. Sub-pixel resolution is (Width*2) x
// (Height*4).
type Canvas struct {
	Width, Height int
	bits          [][]rune
	bucket        [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		bits:   make([][]rune, h),
		bucket: make([][]int, h),
	}
	for i := range c.bits {
		c.bits[i] = make([]rune, w)
		c.bucket[i] = make([]int, w)
		for j := range c.bits[i] {
			c.bits[i][j] = 0x2800
			c.bucket[i][j] = -1
		}
	}
	return c
}

// Set lights the sub-pixel at (x, y) with the color bucket for phase.
func (c *Canvas) Set(x, y int, phase float64) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.bits[row][col] |= pixelMap[y%4][x%2]
	c.bucket[row][col] = PhaseBucket(phase)
}

// SetMark draws a plain uncolored marker character, overriding any dots in
// the cell. Used for the target crosshair.
func (c *Canvas) SetMark(x, y int, mark rune) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.bits[row][col] = mark
	c.bucket[row][col] = -1
}

func (c *Canvas) Clear() {
	for i := range c.bits {
		for j := range c.bits[i] {
			c.bits[i][j] = 0x2800
			c.bucket[i][j] = -1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for row := range c.bits {
		for col := range c.bits[row] {
			r := c.bits[row][col]
			if bucket := c.bucket[row][col]; bucket >= 0 {
				b.WriteString(phaseStyles[bucket].Render(string(r)))
			} else {
				b.WriteRune(r)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// PhaseBucket maps a phase in (-2π, 2π) onto a palette index. Negative
// phases wrap to their positive equivalent so the hue wheel stays
// continuous.
func PhaseBucket(phase float64) int {
	norm := math.Mod(phase, 2*math.Pi)
	if norm < 0 {
		norm += 2 * math.Pi
	}
	i := int(norm / (2 * math.Pi) * float64(len(phasePalette)))
	if i >= len(phasePalette) {
		i = len(phasePalette) - 1
	}
	return i
}
