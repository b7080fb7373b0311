package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"cutout-studio/internal/export"
	"cutout-studio/internal/logging"
)

var (
	// ErrNotLoaded is returned by Save before any source was loaded.
	ErrNotLoaded = errors.New("editor: no image loaded")
	// ErrExportInProgress is returned when a save is already running.
	ErrExportInProgress = errors.New("editor: export already in progress")
	// ErrLoadSuperseded is reported to a load whose result was discarded
	// because a newer load started.
	ErrLoadSuperseded = errors.New("editor: load superseded")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("editor: session closed")
)

// SaveResult is the committed edit.
type SaveResult struct {
	// Image is an independent copy of the buffer.
	Image *image.NRGBA
	// PNG is Image encoded losslessly.
	PNG []byte
}

// DecodeFunc produces the source image for an asynchronous load.
type DecodeFunc func(ctx context.Context) (image.Image, error)

// Session owns an Editor for its lifetime. It serialises access from UI
// callbacks and background completions, discards stale loads, allows one
// export at a time, and releases scoped resources on Close.
type Session struct {
	mu      sync.Mutex
	ed      *Editor
	loadSeq uint64
	closed  bool
	closers []func()

	exporting atomic.Bool
	onSave    func(SaveResult)

	log *slog.Logger
}

// NewSession wraps ed. onSave, if not nil, receives every successful save.
func NewSession(ed *Editor, onSave func(SaveResult)) *Session {
	return &Session{ed: ed, onSave: onSave, log: logging.For("session")}
}

// Do runs fn with exclusive access to the editor. fn must not call back into
// the session.
func (s *Session) Do(fn func(*Editor)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn(s.ed)
}

// Load loads src synchronously, superseding any in-flight LoadAsync.
func (s *Session) Load(src image.Image, w, h int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.loadSeq++
	return s.ed.LoadSource(src, w, h)
}

// LoadAsync runs decode on its own goroutine and loads the result into a
// w×h buffer. If another load starts first the result is dropped and done
// receives ErrLoadSuperseded. done may be nil.
func (s *Session) LoadAsync(ctx context.Context, decode DecodeFunc, w, h int, done func(error)) {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	finish := func(err error) {
		if done != nil {
			done(err)
		}
	}

	go func() {
		img, err := decode(ctx)
		if err == nil {
			err = ctx.Err()
		}

		s.mu.Lock()
		switch {
		case s.closed:
			err = ErrClosed
		case seq != s.loadSeq:
			s.log.Debug("discarding stale load", "seq", seq, "latest", s.loadSeq)
			err = ErrLoadSuperseded
		case err != nil:
			err = fmt.Errorf("decode source: %w", err)
		case !s.ed.LoadSource(img, w, h):
			err = ErrNotLoaded
		}
		s.mu.Unlock()

		if err != nil && !errors.Is(err, ErrLoadSuperseded) {
			s.log.Warn("load failed", "error", err)
		}
		finish(err)
	}()
}

// Save encodes the current buffer as PNG and hands it to the save callback.
// A fully erased buffer still produces a valid, fully transparent PNG.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	if !s.exporting.CompareAndSwap(false, true) {
		return SaveResult{}, ErrExportInProgress
	}
	defer s.exporting.Store(false)
	return s.save(ctx)
}

// SaveAsync is Save on its own goroutine. It fails immediately with
// ErrExportInProgress when another save is running.
func (s *Session) SaveAsync(ctx context.Context, done func(SaveResult, error)) error {
	if !s.exporting.CompareAndSwap(false, true) {
		return ErrExportInProgress
	}
	go func() {
		defer s.exporting.Store(false)
		res, err := s.save(ctx)
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}

func (s *Session) save(ctx context.Context) (SaveResult, error) {
	var img *image.NRGBA
	s.mu.Lock()
	closed := s.closed
	if !closed {
		img = s.ed.Snapshot()
	}
	s.mu.Unlock()
	if closed {
		return SaveResult{}, ErrClosed
	}
	if img == nil {
		return SaveResult{}, ErrNotLoaded
	}

	data, err := export.EncodeBytes(img, export.PNG, export.Options{})
	if err != nil {
		s.log.Warn("save failed", "error", err)
		return SaveResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return SaveResult{}, err
	}

	res := SaveResult{Image: img, PNG: data}
	s.log.Debug("saved", "bytes", len(data))
	if s.onSave != nil {
		s.onSave(res)
	}
	return res, nil
}

// OnClose registers fn to run once when the session closes. Use it for
// scoped subscriptions such as keyboard handlers.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	if !s.closed {
		s.closers = append(s.closers, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// Close discards in-flight loads and runs the OnClose hooks in reverse
// order. Further calls are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.loadSeq++
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
