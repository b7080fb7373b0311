package panels

import (
	"image/color"
	"path/filepath"
	"strings"

	"cutout-studio/internal/app"
	"cutout-studio/internal/config"
	"cutout-studio/internal/export"
	"cutout-studio/internal/image"
	"cutout-studio/pkg/colorutil"
	"cutout-studio/ui/prefs"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

var backgroundTypes = []string{"Transparent", "Color", "Image"}

// BackgroundPanel edits the selected item's background and exports it.
type BackgroundPanel struct {
	state  *app.State
	cfg    *config.Config
	prefs  *prefs.Prefs
	window fyne.Window

	typeRadio  *widget.RadioGroup
	hexEntry   *widget.Entry
	imageLabel *widget.Label
	formatSel  *widget.Select
	exportBtn  *widget.Button
	container  fyne.CanvasObject

	syncing bool
}

// NewBackgroundPanel creates the background and export panel.
func NewBackgroundPanel(state *app.State, cfg *config.Config, p *prefs.Prefs) *BackgroundPanel {
	bp := &BackgroundPanel{state: state, cfg: cfg, prefs: p}

	bp.typeRadio = widget.NewRadioGroup(backgroundTypes, bp.onTypeChanged)
	bp.typeRadio.Horizontal = true

	var swatches []fyne.CanvasObject
	for _, hex := range colorutil.Presets {
		c, _ := colorutil.ParseHex(hex)
		swatches = append(swatches, newSwatch(c, func() { bp.setColor(hex) }))
	}

	bp.hexEntry = widget.NewEntry()
	bp.hexEntry.SetPlaceHolder("#ffffff")
	bp.hexEntry.OnSubmitted = func(s string) {
		hex, err := NormalizeHex(s)
		if err != nil {
			if bp.window != nil {
				dialog.ShowError(err, bp.window)
			}
			return
		}
		bp.setColor(hex)
	}

	bp.imageLabel = widget.NewLabel("No image chosen")
	bp.imageLabel.Truncation = fyne.TextTruncateEllipsis
	chooseBtn := widget.NewButton("Choose Image...", bp.onChooseImage)

	var formats []string
	for _, f := range []export.Format{export.PNG, export.WebP} {
		if export.Registered(f) {
			formats = append(formats, string(f))
		}
	}
	format := p.String(prefs.KeyExportFormat, cfg.Export.Format)
	if f, err := export.ParseFormat(format); err != nil || !export.Registered(f) {
		format = string(export.PNG)
	}
	bp.formatSel = widget.NewSelect(formats, func(s string) {
		bp.prefs.SetString(prefs.KeyExportFormat, s)
	})
	bp.formatSel.SetSelected(format)
	bp.exportBtn = widget.NewButton("Export...", bp.Export)

	bp.container = container.NewVBox(
		widget.NewCard("Background", "", container.NewVBox(
			bp.typeRadio,
			container.NewGridWithColumns(5, swatches...),
			container.NewBorder(nil, nil, widget.NewLabel("Hex:"), nil, bp.hexEntry),
			container.NewBorder(nil, nil, nil, chooseBtn, bp.imageLabel),
		)),
		widget.NewCard("Export", "", container.NewVBox(
			container.NewBorder(nil, nil, widget.NewLabel("Format:"), nil, bp.formatSel),
			bp.exportBtn,
		)),
	)

	state.On(app.EventSelectionChanged, func(interface{}) { bp.sync() })
	state.On(app.EventItemUpdated, func(interface{}) { bp.sync() })
	bp.sync()
	return bp
}

// Container returns the panel container.
func (bp *BackgroundPanel) Container() fyne.CanvasObject {
	return bp.container
}

// SetWindow sets the parent window for dialogs.
func (bp *BackgroundPanel) SetWindow(w fyne.Window) {
	bp.window = w
}

func (bp *BackgroundPanel) sync() {
	it, ok := bp.state.Selected()
	bp.syncing = true
	defer func() { bp.syncing = false }()

	if !ok {
		bp.typeRadio.Disable()
		bp.exportBtn.Disable()
		return
	}
	bp.typeRadio.Enable()
	bp.typeRadio.SetSelected(backgroundTypes[it.Background.Type])
	bp.hexEntry.SetText(it.Background.Color)
	if it.Background.Image == nil {
		bp.imageLabel.SetText("No image chosen")
	}
	if it.Result() != nil {
		bp.exportBtn.Enable()
	} else {
		bp.exportBtn.Disable()
	}
}

func (bp *BackgroundPanel) onTypeChanged(s string) {
	if bp.syncing {
		return
	}
	it, ok := bp.state.Selected()
	if !ok {
		return
	}
	t, err := image.ParseBackgroundType(strings.ToLower(s))
	if err != nil {
		return
	}
	if t == image.BackgroundImage && it.Background.Image == nil {
		bp.onChooseImage()
		return
	}
	bg := it.Background
	bg.Type = t
	bp.state.SetBackground(it.ID, bg)
}

func (bp *BackgroundPanel) setColor(hex string) {
	it, ok := bp.state.Selected()
	if !ok {
		return
	}
	bg := it.Background
	bg.Type = image.BackgroundColor
	bg.Color = hex
	bp.state.SetBackground(it.ID, bg)
}

func (bp *BackgroundPanel) onChooseImage() {
	it, ok := bp.state.Selected()
	if !ok {
		return
	}
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			bp.sync()
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()

		src, err := image.Load(path, bp.cfg.MaxFileBytes())
		if err != nil {
			dialog.ShowError(err, bp.window)
			bp.sync()
			return
		}
		bp.prefs.SetString(prefs.KeyLastDir, filepath.Dir(path))
		bp.imageLabel.SetText(src.Name)
		bg := it.Background
		bg.Type = image.BackgroundImage
		bg.Image = src.Image
		bp.state.SetBackground(it.ID, bg)
	}, bp.window)
	fd.SetFilter(storage.NewExtensionFileFilter(image.SupportedFormats()))
	if loc := lastDir(bp.prefs); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// Export saves the selected item's result through a file dialog.
func (bp *BackgroundPanel) Export() {
	it, ok := bp.state.Selected()
	if !ok {
		return
	}
	f, err := export.ParseFormat(bp.formatSel.Selected)
	if err != nil {
		dialog.ShowError(err, bp.window)
		return
	}
	artifact, err := bp.state.Export(it.ID, f, export.Options{Quality: bp.cfg.Export.WebPQuality})
	if err != nil {
		dialog.ShowError(err, bp.window)
		return
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if _, err := writer.Write(artifact.Data); err != nil {
			dialog.ShowError(err, bp.window)
			return
		}
		bp.prefs.SetString(prefs.KeyLastDir, filepath.Dir(writer.URI().Path()))
	}, bp.window)
	fd.SetFileName(artifact.Filename)
	if loc := lastDir(bp.prefs); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// swatch is a tappable colour square.
type swatch struct {
	widget.BaseWidget
	rect  *fynecanvas.Rectangle
	onTap func()
}

func newSwatch(c color.Color, onTap func()) *swatch {
	rect := fynecanvas.NewRectangle(c)
	rect.StrokeColor = color.NRGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	rect.StrokeWidth = 1
	rect.CornerRadius = 4
	s := &swatch{rect: rect, onTap: onTap}
	s.ExtendBaseWidget(s)
	return s
}

func (s *swatch) Tapped(*fyne.PointEvent) {
	if s.onTap != nil {
		s.onTap()
	}
}

func (s *swatch) MinSize() fyne.Size {
	return fyne.NewSize(24, 24)
}

func (s *swatch) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.rect)
}
