package annotation

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/findview/internal/search"
)

// DefaultMatchStyle is the style used for match highlights.
var DefaultMatchStyle = tcell.StyleDefault.
	Background(tcell.ColorYellow).
	Foreground(tcell.ColorBlack)

// ScreenLayer is an atomic layer that can paint its document onto a
// terminal screen with annotated ranges highlighted.
type ScreenLayer struct {
	Model

	// Style is applied to text covered by an annotation.
	Style tcell.Style
	// Base is applied to all other text.
	Base tcell.Style
	// TabWidth is the number of columns between tab stops.
	TabWidth int
}

// NewScreenLayer creates a screen layer with default styles.
func NewScreenLayer() *ScreenLayer {
	return &ScreenLayer{
		Style:    DefaultMatchStyle,
		Base:     tcell.StyleDefault,
		TabWidth: 4,
	}
}

// Draw renders text into the rectangle at (x, y) of the given size.
// Lines beyond the rectangle are clipped.
func (l *ScreenLayer) Draw(screen tcell.Screen, text string, x, y, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	marks := l.Overlapping(search.Span{Offset: 0, Length: len(text)})
	mark := 0

	tabWidth := l.TabWidth
	if tabWidth <= 0 {
		tabWidth = 4
	}

	row, col := 0, 0
	for offset, r := range text {
		if row >= height {
			return
		}
		if r == '\n' {
			for ; col < width; col++ {
				screen.SetContent(x+col, y+row, ' ', nil, l.Base)
			}
			row++
			col = 0
			continue
		}

		for mark < len(marks) && marks[mark].Span.End() <= offset {
			mark++
		}
		style := l.Base
		if mark < len(marks) && marks[mark].Span.Contains(offset) {
			style = l.Style
		}

		if r == '\t' {
			next := (col/tabWidth + 1) * tabWidth
			for ; col < next && col < width; col++ {
				screen.SetContent(x+col, y+row, ' ', nil, style)
			}
			continue
		}

		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > width {
			continue
		}
		screen.SetContent(x+col, y+row, r, nil, style)
		col += w
	}
}

var _ Replacer = (*ScreenLayer)(nil)
