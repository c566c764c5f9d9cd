package app

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/findview/internal/history"
	"github.com/dshills/findview/internal/prefs"
	"github.com/dshills/findview/internal/resources"
)

var (
	styleStatus = tcell.StyleDefault.Reverse(true)
	styleLabel  = tcell.StyleDefault.Bold(true)
	styleActive = tcell.StyleDefault.Underline(true)
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Run initializes screen and processes events until the user quits.
func (a *Application) Run(screen tcell.Screen) error {
	if screen == nil {
		return ErrNoScreen
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	a.setScreen(screen)
	defer a.setScreen(nil)

	for {
		a.Draw(screen)

		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			if ev.Data() == quitRequest {
				return nil
			}
		case *tcell.EventKey:
			if err := a.HandleKey(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		}
	}
}

func (a *Application) setScreen(s tcell.Screen) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.screen = s
}

type quitSignal struct{}

var quitRequest = quitSignal{}

// Quit asks a running event loop to return. It may be called from any
// goroutine.
func (a *Application) Quit() {
	a.mu.Lock()
	screen := a.screen
	a.mu.Unlock()

	if screen != nil {
		_ = screen.PostEvent(tcell.NewEventInterrupt(quitRequest))
	}
}

// running reports whether the event loop owns a screen.
func (a *Application) running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.screen != nil
}

// HandleKey applies one key press. It returns ErrQuit when the user asked
// to exit.
func (a *Application) HandleKey(ev *tcell.EventKey) error {
	e := a.engine

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return ErrQuit

	case tcell.KeyEscape:
		if a.prefs.Bool(prefs.KeyCloseWithEsc) {
			return ErrQuit
		}
		a.setFieldText("")

	case tcell.KeyEnter:
		a.logNav(e.GotoNext())
	case tcell.KeyCtrlP:
		a.logNav(e.GotoPrevious())

	case tcell.KeyTab, tcell.KeyBacktab:
		a.mu.Lock()
		if a.field == FieldFind {
			a.field = FieldReplace
		} else {
			a.field = FieldFind
		}
		a.mu.Unlock()

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		text := a.fieldText()
		if text != "" {
			_, size := utf8.DecodeLastRuneInString(text)
			a.setFieldText(text[:len(text)-size])
		}

	case tcell.KeyCtrlR:
		if _, err := e.ReplaceNextMatch(); err != nil {
			a.log.Debug("replace next: %v", err)
		}
	case tcell.KeyCtrlE:
		e.ReplaceCurrentSelection()
	case tcell.KeyCtrlA:
		n := e.ReplaceAll()
		a.log.Info("replaced %d matches", n)
	case tcell.KeyCtrlS:
		e.SwapSearchAndReplace()

	case tcell.KeyCtrlN:
		a.NextEditor()

	case tcell.KeyCtrlY:
		e.RecordHistory()
	case tcell.KeyCtrlL:
		a.loadRecentHistory()

	case tcell.KeyF1:
		a.togglePref(prefs.KeyMatchCase)
	case tcell.KeyF2:
		a.togglePref(prefs.KeyMatchWholeWord)
	case tcell.KeyF3:
		a.togglePref(prefs.KeyMatchRegex)
	case tcell.KeyF4:
		a.togglePref(prefs.KeyHighlightAll)
	case tcell.KeyF5:
		a.togglePref(prefs.KeyHistoryAutoAdd)
	case tcell.KeyF6:
		a.togglePref(prefs.KeyCloseWithEsc)
	case tcell.KeyF7:
		a.resetSearchOptions()

	case tcell.KeyRune:
		a.setFieldText(a.fieldText() + string(ev.Rune()))
	}
	return nil
}

func (a *Application) logNav(_ int, err error) {
	if err != nil {
		a.log.Debug("navigate: %v", err)
	}
}

func (a *Application) fieldText() string {
	if a.Field() == FieldReplace {
		return a.engine.ReplaceWith().Get()
	}
	return a.engine.SearchString().Get()
}

func (a *Application) setFieldText(s string) {
	if a.Field() == FieldReplace {
		a.engine.SetReplaceWith(s)
		return
	}
	a.engine.SetSearchString(s)
}

func (a *Application) togglePref(key string) {
	if err := a.prefs.SetBool(key, !a.prefs.Bool(key)); err != nil {
		a.log.Error("toggling %s: %v", key, err)
		return
	}
	if err := a.prefs.Save(); err != nil {
		a.log.Error("saving preferences: %v", err)
	}
}

// resetSearchOptions restores the default search modes.
func (a *Application) resetSearchOptions() {
	for _, key := range []string{prefs.KeyMatchCase, prefs.KeyMatchWholeWord, prefs.KeyMatchRegex, prefs.KeyHighlightAll} {
		if err := a.prefs.Reset(key); err != nil {
			a.log.Error("resetting %s: %v", key, err)
		}
	}
	if err := a.prefs.Save(); err != nil {
		a.log.Error("saving preferences: %v", err)
	}
}

// loadRecentHistory applies the first entry in display order.
func (a *Application) loadRecentHistory() {
	entries := a.history.DisplayOrder()
	if len(entries) == 0 {
		return
	}
	a.engine.LoadHistoryEntry(entries[0])
}

// Draw paints the active document and the find bar onto screen.
func (a *Application) Draw(screen tcell.Screen) {
	screen.Clear()
	w, h := screen.Size()
	if w <= 0 || h < 3 {
		screen.Show()
		return
	}

	a.mu.Lock()
	cur := a.editors[a.active]
	field := a.field
	a.mu.Unlock()

	cur.layer.Draw(screen, cur.editor.Buffer().Text(), 0, 0, w, h-2)
	a.drawStatus(screen, cur, 0, h-2, w)
	a.drawFindBar(screen, field, 0, h-1, w)
	screen.Show()
}

func (a *Application) drawStatus(screen tcell.Screen, cur openEditor, x, y, width int) {
	for col := x; col < x+width; col++ {
		screen.SetContent(col, y, ' ', nil, styleStatus)
	}

	st := a.engine.Status()
	offset, length := cur.editor.Buffer().Selection()

	left := fmt.Sprintf(" %s @%d:%d", cur.path, offset, length)
	if st.Visible {
		left += "  "
		if icon, ok := resources.Lookup(st.Icon); ok {
			left += string(icon.Glyph) + " "
		}
		left += st.Message
	}
	if st.Err != nil {
		left += ": " + st.Err.Error()
	}
	col := drawString(screen, x, y, x+width, left, styleStatus)

	opts := history.NewEntry("", "", a.prefs.SearchOptions()).OptionsDisplay()
	if opts != "" {
		right := "[" + opts + "] "
		start := x + width - runewidth.StringWidth(right)
		if start > col {
			drawString(screen, start, y, x+width, right, styleStatus)
		}
	}
}

func (a *Application) drawFindBar(screen tcell.Screen, field Field, x, y, width int) {
	end := x + width

	col := drawString(screen, x, y, end, "Find: ", styleLabel)
	findStyle := tcell.StyleDefault
	if field == FieldFind {
		findStyle = styleActive
	}
	if a.engine.LastError() != nil {
		findStyle = styleError.Underline(field == FieldFind)
	}
	col = drawString(screen, col, y, end, a.engine.SearchString().Get(), findStyle)
	cursor := col

	col = drawString(screen, col+2, y, end, "Replace: ", styleLabel)
	replaceStyle := tcell.StyleDefault
	if field == FieldReplace {
		replaceStyle = styleActive
	}
	col = drawString(screen, col, y, end, a.engine.ReplaceWith().Get(), replaceStyle)
	if field == FieldReplace {
		cursor = col
	}

	if cursor < end {
		screen.ShowCursor(cursor, y)
	}
}

// drawString writes s starting at (x, y) without passing maxX and returns
// the column after the last rune written.
func drawString(screen tcell.Screen, x, y, maxX int, s string, style tcell.Style) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			w = 1
		}
		if x+w > maxX {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}
