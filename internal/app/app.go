// Package app hosts the find/replace engine in a terminal text viewer.
//
// The Application opens files as editors of a single window, binds the
// engine's search and replace strings to a two-field find bar and draws the
// active document with its match highlights through tcell.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/findview/internal/annotation"
	"github.com/dshills/findview/internal/document"
	"github.com/dshills/findview/internal/engine"
	"github.com/dshills/findview/internal/history"
	"github.com/dshills/findview/internal/logging"
	"github.com/dshills/findview/internal/prefs"
	"github.com/dshills/findview/internal/search"
)

// Options configures the application.
type Options struct {
	// PrefsPath is the preference file. Empty uses the user config dir.
	PrefsPath string

	// Files are opened as editors, the first one active.
	Files []string

	// LogPath receives log output. Empty discards logs.
	LogPath string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// Debug forces debug logging.
	Debug bool

	// NoWatch disables live reload of the preference file.
	NoWatch bool
}

// Field is the find bar input that receives typed text.
type Field int

const (
	// FieldFind is the search string input.
	FieldFind Field = iota
	// FieldReplace is the replacement string input.
	FieldReplace
)

// openEditor is one opened file.
type openEditor struct {
	path   string
	editor *document.TextEditor
	layer  *annotation.ScreenLayer
}

// Application is the terminal host of one find/replace window.
type Application struct {
	opts Options
	log  *logging.Logger

	logFile  *os.File
	prefs    *prefs.Store
	history  *history.Store
	registry *engine.Registry
	window   *engine.BasicWindow
	engine   *engine.Engine

	mu      sync.Mutex
	editors []openEditor
	active  int
	field   Field
	screen  tcell.Screen

	cancelWatch context.CancelFunc
	watchDone   <-chan struct{}
	shutdown    sync.Once
}

// New creates the application and opens opts.Files.
func New(opts Options) (*Application, error) {
	a := &Application{opts: opts}

	if err := a.setupLogging(); err != nil {
		return nil, err
	}
	if err := a.setupPrefs(); err != nil {
		a.closeLog()
		return nil, err
	}

	a.history = history.NewStore(
		history.WithStorage(history.PrefsStorage{Prefs: a.prefs}),
		history.WithLogger(a.log),
	)
	if err := a.history.Load(); err != nil {
		a.log.Warn("loading history: %v", err)
	}

	a.window = engine.NewBasicWindow("main")
	a.registry = engine.NewRegistry(a.prefs,
		engine.WithLogger(a.log),
		engine.WithHistory(a.history),
		engine.WithBeeper(a.beep),
	)
	a.registry.SetLogger(a.log)
	a.registry.OnWindowOpened(a.window)

	e, err := a.registry.Engine(a.window.ID())
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.engine = e

	if err := a.openFiles(opts.Files); err != nil {
		a.Shutdown()
		return nil, err
	}

	if !opts.NoWatch {
		ctx, cancel := context.WithCancel(context.Background())
		done, err := a.prefs.Watch(ctx)
		if err != nil {
			cancel()
			a.log.Warn("preferences will not reload: %v", err)
		} else {
			a.cancelWatch, a.watchDone = cancel, done
		}
	}

	a.prefs.AddListener(func(prefs.Change) { a.requestRedraw() })
	a.engine.Matches().Subscribe(func(_, _ []search.Span) { a.requestRedraw() })

	return a, nil
}

func (a *Application) setupLogging() error {
	level := logging.ParseLevel(a.opts.LogLevel)
	if a.opts.Debug {
		level = logging.LevelDebug
	}

	if a.opts.LogPath == "" {
		a.log = logging.Null()
		return nil
	}

	f, err := os.OpenFile(a.opts.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	a.logFile = f

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Output = f
	a.log = logging.New(cfg)
	return nil
}

func (a *Application) setupPrefs() error {
	path := a.opts.PrefsPath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locating config dir: %w", err)
		}
		path = filepath.Join(dir, "findview", "prefs.toml")
	}

	a.prefs = prefs.New(prefs.WithPath(path), prefs.WithLogger(a.log))
	if err := a.prefs.Load(); err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}

	a.log.Info("preferences loaded from %s", a.prefs.Path())
	for _, key := range prefs.Keys() {
		if a.prefs.IsDefault(key) || key == prefs.KeyHistory {
			continue
		}
		a.log.Debug("preference %s = %v", key, a.prefs.Bool(key))
	}
	return nil
}

func (a *Application) openFiles(paths []string) error {
	if len(paths) == 0 {
		a.addEditor("scratch", "")
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		a.addEditor(path, string(data))
		a.log.Info("opened %s (%d bytes)", path, len(data))
	}

	a.mu.Lock()
	ed := a.editors[0].editor
	a.mu.Unlock()
	a.window.Activate(ed)
	return nil
}

func (a *Application) addEditor(path, text string) {
	layer := annotation.NewScreenLayer()
	ed := document.NewTextEditor(path, text, layer)

	a.mu.Lock()
	a.editors = append(a.editors, openEditor{path: path, editor: ed, layer: layer})
	a.mu.Unlock()
}

// Engine returns the find/replace engine of the window.
func (a *Application) Engine() *engine.Engine { return a.engine }

// Prefs returns the preference store.
func (a *Application) Prefs() *prefs.Store { return a.prefs }

// History returns the history store.
func (a *Application) History() *history.Store { return a.history }

// ActiveEditor returns the focused editor.
func (a *Application) ActiveEditor() *document.TextEditor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editors[a.active].editor
}

// Field returns the find bar field receiving input.
func (a *Application) Field() Field {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.field
}

// NextEditor focuses the next opened file.
func (a *Application) NextEditor() {
	a.mu.Lock()
	a.active = (a.active + 1) % len(a.editors)
	ed := a.editors[a.active].editor
	a.mu.Unlock()

	a.window.Activate(ed)
}

// Shutdown closes the window, stops the preference watcher and saves
// pending preferences. It is safe to call more than once.
func (a *Application) Shutdown() {
	a.shutdown.Do(func() {
		if a.registry != nil {
			a.registry.OnWindowClosed(a.window.ID())
		}
		if a.cancelWatch != nil {
			a.cancelWatch()
			<-a.watchDone
		}
		if a.prefs != nil && a.prefs.NeedsSaving() {
			if err := a.prefs.Save(); err != nil {
				a.log.Error("saving preferences: %v", err)
			}
		}
		a.log.Info("shutdown complete")
		a.closeLog()
	})
}

func (a *Application) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

func (a *Application) beep() {
	a.mu.Lock()
	screen := a.screen
	a.mu.Unlock()

	if screen != nil {
		_ = screen.Beep()
	}
}

// requestRedraw wakes the event loop from another goroutine.
func (a *Application) requestRedraw() {
	a.mu.Lock()
	screen := a.screen
	a.mu.Unlock()

	if screen != nil {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}
