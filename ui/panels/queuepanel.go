package panels

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"cutout-studio/internal/app"
	"cutout-studio/internal/image"
	"cutout-studio/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// QueuePanel lists the queued images and drives processing.
type QueuePanel struct {
	ctx    context.Context
	state  *app.State
	prefs  *prefs.Prefs
	window fyne.Window

	mu    sync.Mutex
	items []app.Item

	list       *widget.List
	processBtn *widget.Button
	editBtn    *widget.Button
	removeBtn  *widget.Button
	container  fyne.CanvasObject

	onEdit func()
}

// NewQueuePanel creates the queue panel. Processing started from the panel
// stops when ctx is canceled.
func NewQueuePanel(ctx context.Context, state *app.State, p *prefs.Prefs) *QueuePanel {
	qp := &QueuePanel{ctx: ctx, state: state, prefs: p}

	qp.list = widget.NewList(
		func() int {
			qp.mu.Lock()
			defer qp.mu.Unlock()
			return len(qp.items)
		},
		func() fyne.CanvasObject {
			name := widget.NewLabel("image.png")
			name.Truncation = fyne.TextTruncateEllipsis
			status := widget.NewLabel("idle")
			return container.NewVBox(
				container.NewBorder(nil, nil, nil, status, name),
				widget.NewProgressBar(),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			qp.mu.Lock()
			if id < 0 || id >= len(qp.items) {
				qp.mu.Unlock()
				return
			}
			it := qp.items[id]
			qp.mu.Unlock()

			box := obj.(*fyne.Container)
			row := box.Objects[0].(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(it.Name)
			row.Objects[1].(*widget.Label).SetText(StatusText(it))
			bar := box.Objects[1].(*widget.ProgressBar)
			bar.SetValue(float64(it.Progress) / 100)
			if it.Status == app.StatusProcessing {
				bar.Show()
			} else {
				bar.Hide()
			}
		},
	)
	qp.list.OnSelected = func(id widget.ListItemID) {
		qp.mu.Lock()
		if id < 0 || id >= len(qp.items) {
			qp.mu.Unlock()
			return
		}
		sel := qp.items[id].ID
		qp.mu.Unlock()
		if cur, ok := qp.state.Selected(); ok && cur.ID == sel {
			return
		}
		qp.state.Select(sel)
	}

	addBtn := widget.NewButton("Add Images...", qp.Browse)
	qp.processBtn = widget.NewButton("Remove Background", qp.onProcess)
	allBtn := widget.NewButton("Process All", qp.onProcessAll)
	qp.editBtn = widget.NewButton("Erase Manually...", func() {
		if qp.onEdit != nil {
			qp.onEdit()
		}
	})
	qp.removeBtn = widget.NewButton("Remove", qp.onRemove)
	clearBtn := widget.NewButton("Clear All", func() { qp.state.Clear() })

	qp.container = container.NewBorder(
		container.NewGridWithColumns(2, addBtn, allBtn),
		container.NewVBox(
			qp.processBtn,
			qp.editBtn,
			container.NewGridWithColumns(2, qp.removeBtn, clearBtn),
		),
		nil, nil,
		qp.list,
	)

	for _, ev := range []app.EventType{app.EventItemsAdded, app.EventItemRemoved, app.EventItemsCleared, app.EventItemUpdated, app.EventProgress} {
		state.On(ev, func(interface{}) { qp.reload() })
	}
	state.On(app.EventSelectionChanged, func(interface{}) { qp.syncSelection() })
	state.On(app.EventFileErrors, func(data interface{}) {
		if errs, ok := data.([]error); ok && len(errs) > 0 {
			qp.showFileErrors(errs)
		}
	})

	qp.reload()
	return qp
}

// Container returns the panel container.
func (qp *QueuePanel) Container() fyne.CanvasObject {
	return qp.container
}

// SetWindow sets the parent window for dialogs.
func (qp *QueuePanel) SetWindow(w fyne.Window) {
	qp.window = w
}

// OnEdit sets the action behind the manual eraser button.
func (qp *QueuePanel) OnEdit(fn func()) {
	qp.onEdit = fn
}

// AddFiles queues paths as if chosen in the file dialog.
func (qp *QueuePanel) AddFiles(paths []string) {
	if len(paths) == 0 {
		return
	}
	qp.prefs.SetString(prefs.KeyLastDir, filepath.Dir(paths[0]))
	qp.state.AddFiles(paths)
}

func (qp *QueuePanel) reload() {
	items := qp.state.Items()
	qp.mu.Lock()
	qp.items = items
	qp.mu.Unlock()
	qp.list.Refresh()
	qp.updateButtons()
}

func (qp *QueuePanel) syncSelection() {
	sel, ok := qp.state.Selected()
	if !ok {
		qp.list.UnselectAll()
		qp.updateButtons()
		return
	}
	qp.mu.Lock()
	idx := -1
	for i, it := range qp.items {
		if it.ID == sel.ID {
			idx = i
			break
		}
	}
	qp.mu.Unlock()
	if idx >= 0 {
		qp.list.Select(idx)
	}
	qp.updateButtons()
}

func (qp *QueuePanel) updateButtons() {
	sel, ok := qp.state.Selected()
	setEnabled(qp.removeBtn, ok)
	setEnabled(qp.processBtn, ok && sel.Status != app.StatusProcessing)
	setEnabled(qp.editBtn, ok && sel.Foreground() != nil)
}

// Browse opens the file dialog and queues the chosen image.
func (qp *QueuePanel) Browse() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		qp.AddFiles([]string{path})
	}, qp.window)
	fd.SetFilter(storage.NewExtensionFileFilter(image.SupportedFormats()))
	if loc := lastDir(qp.prefs); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (qp *QueuePanel) onProcess() {
	sel, ok := qp.state.Selected()
	if !ok {
		return
	}
	// failures land on the item itself
	go func() { _ = qp.state.Process(qp.ctx, sel.ID) }()
}

func (qp *QueuePanel) onProcessAll() {
	go func() {
		_ = qp.state.ProcessAll(qp.ctx)
	}()
}

func (qp *QueuePanel) onRemove() {
	if sel, ok := qp.state.Selected(); ok {
		qp.state.Remove(sel.ID)
	}
}

func (qp *QueuePanel) showFileErrors(errs []error) {
	if qp.window == nil {
		return
	}
	d := dialog.NewError(fmt.Errorf("%d file(s) skipped:\n%w", len(errs), errors.Join(errs...)), qp.window)
	d.SetOnClosed(qp.state.ClearErrors)
	d.Show()
}

// StatusText is the short status shown next to an item.
func StatusText(it app.Item) string {
	switch it.Status {
	case app.StatusProcessing:
		return fmt.Sprintf("%d%%", it.Progress)
	case app.StatusDone:
		if it.Edited != nil {
			return "edited"
		}
		return "done"
	case app.StatusError:
		return "failed"
	default:
		return "waiting"
	}
}
