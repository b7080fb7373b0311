// Package app holds the application state: the processing queue, selection,
// per-item backgrounds and edits, and the event bus the UI listens on.
package app

import (
	"context"
	"errors"
	"fmt"
	goimage "image"
	"log/slog"
	"slices"
	"sync"

	"cutout-studio/internal/config"
	"cutout-studio/internal/export"
	"cutout-studio/internal/image"
	"cutout-studio/internal/logging"
	"cutout-studio/internal/removal"

	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrNoResult     = errors.New("item has no result yet")
)

// Status is the processing state of a queue item.
type Status int

const (
	StatusIdle Status = iota
	StatusProcessing
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusProcessing:
		return "processing"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Item is one image in the processing queue. Images held by an item are
// never mutated once stored, so copies of Item may share them.
type Item struct {
	ID       ksuid.KSUID
	Name     string
	Path     string
	Original goimage.Image
	Width    int
	Height   int

	Cutout    goimage.Image // removal result
	Edited    goimage.Image // manual eraser output, nil until saved
	Composite goimage.Image // nil while the background is transparent

	Background image.Background
	Status     Status
	Progress   int
	Err        string

	compGen uint64
}

// Foreground is the image composited over the background.
func (it *Item) Foreground() goimage.Image {
	if it.Edited != nil {
		return it.Edited
	}
	return it.Cutout
}

// Result is what gets exported.
func (it *Item) Result() goimage.Image {
	if it.Composite != nil {
		return it.Composite
	}
	return it.Foreground()
}

// EventType identifies different application events.
type EventType int

const (
	EventItemsAdded EventType = iota
	EventItemRemoved
	EventItemsCleared
	EventItemUpdated
	EventProgress
	EventSelectionChanged
	EventFileErrors
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State is the processing queue.
type State struct {
	mu sync.RWMutex

	items      []*Item
	index      map[ksuid.KSUID]*Item
	selected   *ksuid.KSUID
	processing map[ksuid.KSUID]struct{}
	fileErrors []error

	remover     removal.Remover
	maxBytes    int64
	concurrency int
	log         *slog.Logger

	listeners map[EventType][]EventListener
}

// NewState creates an empty queue that removes backgrounds with r.
// A nil cfg selects config.Default.
func NewState(r removal.Remover, cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	conc := cfg.Processing.Concurrency
	if conc <= 0 {
		conc = config.Default().Processing.Concurrency
	}
	return &State{
		index:       make(map[ksuid.KSUID]*Item),
		processing:  make(map[ksuid.KSUID]struct{}),
		remover:     r,
		maxBytes:    cfg.MaxFileBytes(),
		concurrency: conc,
		log:         logging.For("app"),
		listeners:   make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Items returns a copy of the queue in insertion order.
func (s *State) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[i] = *it
	}
	return out
}

// Item returns a copy of the item with the given id.
func (s *State) Item(id ksuid.KSUID) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// Selected returns the selected item, if any.
func (s *State) Selected() (Item, bool) {
	s.mu.RLock()
	id := s.selected
	s.mu.RUnlock()
	if id == nil {
		return Item{}, false
	}
	return s.Item(*id)
}

// Select changes the selection. ksuid.Nil clears it.
func (s *State) Select(id ksuid.KSUID) {
	s.mu.Lock()
	if id.IsNil() {
		s.selected = nil
	} else if _, ok := s.index[id]; ok {
		s.selected = &id
	} else {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.Emit(EventSelectionChanged, id)
}

// AddFiles validates and decodes each path. Files that fail are reported
// in the returned errors (also kept for FileErrors) and skipped; the rest
// are appended as idle items.
func (s *State) AddFiles(paths []string) ([]ksuid.KSUID, []error) {
	var (
		sources []*image.Source
		errs    []error
	)
	for _, p := range paths {
		src, err := image.Load(p, s.maxBytes)
		if err != nil {
			s.log.Warn("rejected file", "path", p, "error", err)
			errs = append(errs, err)
			continue
		}
		sources = append(sources, src)
	}
	if len(errs) > 0 {
		s.mu.Lock()
		s.fileErrors = errs
		s.mu.Unlock()
		s.Emit(EventFileErrors, errs)
	}
	return s.Add(sources...), errs
}

// Add appends decoded sources. If nothing was selected, the first new
// item becomes selected.
func (s *State) Add(sources ...*image.Source) []ksuid.KSUID {
	if len(sources) == 0 {
		return nil
	}
	ids := make([]ksuid.KSUID, 0, len(sources))

	s.mu.Lock()
	for _, src := range sources {
		b := src.Image.Bounds()
		it := &Item{
			ID:         ksuid.New(),
			Name:       src.Name,
			Path:       src.Path,
			Original:   src.Image,
			Width:      b.Dx(),
			Height:     b.Dy(),
			Background: image.DefaultBackground(),
		}
		s.items = append(s.items, it)
		s.index[it.ID] = it
		ids = append(ids, it.ID)
	}
	selChanged := s.selected == nil
	if selChanged {
		first := ids[0]
		s.selected = &first
	}
	s.mu.Unlock()

	s.log.Info("items added", "count", len(ids))
	s.Emit(EventItemsAdded, ids)
	if selChanged {
		s.Emit(EventSelectionChanged, ids[0])
	}
	return ids
}

// Remove drops an item. Removing the selected item clears the selection.
func (s *State) Remove(id ksuid.KSUID) {
	s.mu.Lock()
	if _, ok := s.index[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.index, id)
	s.items = slices.DeleteFunc(s.items, func(it *Item) bool { return it.ID == id })
	selChanged := s.selected != nil && *s.selected == id
	if selChanged {
		s.selected = nil
	}
	s.mu.Unlock()

	s.Emit(EventItemRemoved, id)
	if selChanged {
		s.Emit(EventSelectionChanged, ksuid.Nil)
	}
}

// Clear empties the queue and the selection.
func (s *State) Clear() {
	s.mu.Lock()
	s.items = nil
	s.index = make(map[ksuid.KSUID]*Item)
	s.selected = nil
	s.mu.Unlock()

	s.Emit(EventItemsCleared, nil)
	s.Emit(EventSelectionChanged, ksuid.Nil)
}

// FileErrors returns the errors from the last AddFiles that had any.
func (s *State) FileErrors() []error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.fileErrors)
}

// ClearErrors dismisses the file errors.
func (s *State) ClearErrors() {
	s.mu.Lock()
	s.fileErrors = nil
	s.mu.Unlock()
	s.Emit(EventFileErrors, []error(nil))
}

// update applies fn to the item under the lock. It reports false if the
// item is gone.
func (s *State) update(id ksuid.KSUID, fn func(it *Item)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.index[id]
	if !ok {
		return false
	}
	fn(it)
	return true
}

// Process runs background removal on one item. A call for an item that
// is already being processed returns nil immediately. Items in any other
// state, including error, are (re)processed. A new cutout discards
// previous manual edits.
func (s *State) Process(ctx context.Context, id ksuid.KSUID) error {
	s.mu.Lock()
	it, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	if _, busy := s.processing[id]; busy {
		s.mu.Unlock()
		return nil
	}
	s.processing[id] = struct{}{}
	it.Status, it.Progress, it.Err = StatusProcessing, 0, ""
	src, name := it.Original, it.Name
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.processing, id)
		s.mu.Unlock()
	}()
	s.Emit(EventItemUpdated, id)

	log := s.log.With("item", id.String(), "name", name)
	log.Info("removing background")

	out, err := s.remover.Remove(ctx, src, func(p int) {
		if s.update(id, func(it *Item) { it.Progress = p }) {
			s.Emit(EventProgress, id)
		}
	})
	if err != nil {
		log.Warn("background removal failed", "error", err)
		if s.update(id, func(it *Item) { it.Status, it.Err = StatusError, err.Error() }) {
			s.Emit(EventItemUpdated, id)
		}
		return err
	}

	if !s.update(id, func(it *Item) {
		it.Status, it.Progress = StatusDone, 100
		it.Cutout, it.Edited, it.Composite = out, nil, nil
	}) {
		return nil
	}
	log.Info("background removed")
	s.Emit(EventItemUpdated, id)
	s.recomposite(id)
	return nil
}

// ProcessAll processes every idle item, a bounded number at a time. One
// failure does not stop the others; the failures are returned joined.
func (s *State) ProcessAll(ctx context.Context) error {
	s.mu.RLock()
	var idle []ksuid.KSUID
	for _, it := range s.items {
		if it.Status == StatusIdle {
			idle = append(idle, it.ID)
		}
	}
	s.mu.RUnlock()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(s.concurrency)
	for _, id := range idle {
		g.Go(func() error {
			if err := s.Process(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("item %s: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// SetBackground stores bg on the item and refreshes its composite.
func (s *State) SetBackground(id ksuid.KSUID, bg image.Background) {
	if !s.update(id, func(it *Item) { it.Background = bg }) {
		return
	}
	s.Emit(EventItemUpdated, id)
	s.recomposite(id)
}

// SetEdited stores the manual eraser output (nil reverts to the cutout)
// and refreshes the composite.
func (s *State) SetEdited(id ksuid.KSUID, img goimage.Image) {
	if !s.update(id, func(it *Item) { it.Edited = img }) {
		return
	}
	s.Emit(EventItemUpdated, id)
	s.recomposite(id)
}

// recomposite redraws the item's composite from its foreground and
// background. Failures are logged and leave the previous composite.
func (s *State) recomposite(id ksuid.KSUID) {
	var (
		fg   goimage.Image
		bg   image.Background
		w, h int
		gen  uint64
	)
	if !s.update(id, func(it *Item) {
		fg, bg, w, h = it.Foreground(), it.Background, it.Width, it.Height
		it.compGen++
		gen = it.compGen
	}) || fg == nil {
		return
	}

	var result goimage.Image
	if bg.Type != image.BackgroundTransparent {
		out, err := image.Composite(fg, bg, w, h)
		if err != nil {
			s.log.Warn("composite failed", "item", id.String(), "error", err)
			return
		}
		result = out
	}

	if s.update(id, func(it *Item) {
		if it.compGen == gen {
			it.Composite = result
		}
	}) {
		s.Emit(EventItemUpdated, id)
	}
}

// Result returns the image that would be exported for id.
func (s *State) Result(id ksuid.KSUID) (goimage.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.index[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	res := it.Result()
	if res == nil {
		return nil, ErrNoResult
	}
	return res, nil
}

// Export encodes the item's result in format f.
func (s *State) Export(id ksuid.KSUID, f export.Format, opts export.Options) (export.Artifact, error) {
	res, err := s.Result(id)
	if err != nil {
		return export.Artifact{}, err
	}
	it, _ := s.Item(id)
	return export.Export(res, it.Name, f, opts)
}
