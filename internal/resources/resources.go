// Package resources maps logical resource keys to bundled asset paths.
package resources

// Key identifies a bundled resource.
type Key string

// Resource keys.
const (
	Icon            Key = "icon"
	ArrowDown       Key = "arrow_down"
	ArrowUp         Key = "arrow_up"
	ArrowsUpAndDown Key = "arrows_up_and_down"
	CloseView       Key = "close_view"
	StatusInfo      Key = "status_info"
	StatusWarn      Key = "status_warn"
)

const imageDir = "resources/images/"

// Resource is a bundled asset and its stand-in for text terminals.
type Resource struct {
	Path  string
	Glyph rune
}

var table = map[Key]Resource{
	Icon:            {imageDir + "search.png", '⌕'},
	ArrowDown:       {imageDir + "arrow_down.png", '↓'},
	ArrowUp:         {imageDir + "arrow_up.png", '↑'},
	ArrowsUpAndDown: {imageDir + "arrows_up_and_down.png", '↕'},
	CloseView:       {imageDir + "close_view.png", '×'},
	StatusInfo:      {imageDir + "status_info.png", 'ℹ'},
	StatusWarn:      {imageDir + "status_warn.png", '⚠'},
}

// Lookup returns the resource registered for key.
func Lookup(key Key) (Resource, bool) {
	r, ok := table[key]
	return r, ok
}
