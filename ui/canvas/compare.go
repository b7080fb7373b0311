package canvas

import (
	"image"
	"image/color"
	"math"
	"sync"

	"cutout-studio/pkg/colorutil"
	"cutout-studio/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// DefaultSplit places the divider in the middle of the view.
const DefaultSplit = 0.5

// dividerWidth is in output pixels.
const dividerWidth = 2

var dividerColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// CompareView shows an original and its cutout across a draggable divider:
// the original left of the split, the cutout right of it. Both images are
// contain-fitted over a checkerboard.
type CompareView struct {
	widget.BaseWidget

	raster      *fynecanvas.Raster
	beforeLabel *fynecanvas.Text
	afterLabel  *fynecanvas.Text

	mu     sync.Mutex
	before image.Image
	after  image.Image
	split  float64
	width  float32
}

var (
	_ desktop.Mouseable  = (*CompareView)(nil)
	_ desktop.Cursorable = (*CompareView)(nil)
	_ fyne.Draggable     = (*CompareView)(nil)
)

// NewCompareView creates an empty view with the divider centred.
func NewCompareView() *CompareView {
	v := &CompareView{split: DefaultSplit}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels
	v.beforeLabel = compareLabel("Before")
	v.afterLabel = compareLabel("After")
	v.ExtendBaseWidget(v)
	return v
}

func compareLabel(text string) *fynecanvas.Text {
	t := fynecanvas.NewText(text, color.White)
	t.TextSize = theme.CaptionTextSize()
	t.TextStyle = fyne.TextStyle{Bold: true}
	return t
}

// SetImages replaces both sides. Either may be nil.
func (v *CompareView) SetImages(before, after image.Image) {
	v.mu.Lock()
	v.before, v.after = before, after
	v.mu.Unlock()
	v.Refresh()
}

// Images returns the current sides.
func (v *CompareView) Images() (before, after image.Image) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.before, v.after
}

// Split returns the divider position as a fraction of the width.
func (v *CompareView) Split() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.split
}

// SetSplit moves the divider, clamping to [0, 1].
func (v *CompareView) SetSplit(f float64) {
	if math.IsNaN(f) {
		return
	}
	f = math.Max(0, math.Min(1, f))
	v.mu.Lock()
	changed := f != v.split
	v.split = f
	v.mu.Unlock()
	if changed {
		v.raster.Refresh()
	}
}

func (v *CompareView) splitAt(x float32) {
	v.mu.Lock()
	w := v.width
	v.mu.Unlock()
	if w <= 0 {
		return
	}
	v.SetSplit(float64(x) / float64(w))
}

// MouseDown jumps the divider to the pointer.
func (v *CompareView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		v.splitAt(ev.Position.X)
	}
}

// MouseUp implements desktop.Mouseable.
func (v *CompareView) MouseUp(*desktop.MouseEvent) {}

// Dragged follows the pointer.
func (v *CompareView) Dragged(ev *fyne.DragEvent) {
	v.splitAt(ev.Position.X)
}

// DragEnd implements fyne.Draggable.
func (v *CompareView) DragEnd() {}

// Cursor implements desktop.Cursorable.
func (v *CompareView) Cursor() desktop.Cursor {
	return desktop.HResizeCursor
}

// MinSize implements fyne.Widget.
func (v *CompareView) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

// CreateRenderer implements fyne.Widget.
func (v *CompareView) CreateRenderer() fyne.WidgetRenderer {
	return &compareRenderer{view: v}
}

func (v *CompareView) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	v.mu.Lock()
	before, after, split := v.before, v.after, v.split
	v.mu.Unlock()
	RenderCompare(out, before, after, split)
	return out
}

// RenderCompare fills dst with the comparison at the given split: a
// checkerboard, before contain-fitted left of the divider, after right of
// it, and the divider line on top.
func RenderCompare(dst *image.RGBA, before, after image.Image, split float64) {
	b := dst.Bounds()
	outer := geometry.Sz(float64(b.Dx()), float64(b.Dy()))
	sx := b.Min.X + int(math.Round(split*float64(b.Dx())))

	left := newSampler(before, outer)
	right := newSampler(after, outer)

	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			if px >= sx-dividerWidth/2 && px < sx+dividerWidth-dividerWidth/2 {
				dst.Set(px, py, dividerColor)
				continue
			}
			s := right
			if px < sx {
				s = left
			}
			bg := colorutil.Checker(px-b.Min.X, py-b.Min.Y)
			c, ok := s.at(float64(px-b.Min.X)+0.5, float64(py-b.Min.Y)+0.5)
			if !ok {
				dst.Set(px, py, bg)
				continue
			}
			dst.Set(px, py, colorutil.Over(c, bg))
		}
	}
}

// sampler maps output pixels onto an image letterboxed in the output.
type sampler struct {
	img image.Image
	box geometry.Rect
}

func newSampler(img image.Image, outer geometry.Size) sampler {
	if img == nil {
		return sampler{}
	}
	r := img.Bounds()
	return sampler{img: img, box: geometry.Fit(geometry.Sz(float64(r.Dx()), float64(r.Dy())), outer)}
}

func (s sampler) at(x, y float64) (color.NRGBA, bool) {
	if s.img == nil || s.box.Width <= 0 || s.box.Height <= 0 {
		return color.NRGBA{}, false
	}
	u := (x - s.box.X) / s.box.Width
	w := (y - s.box.Y) / s.box.Height
	if u < 0 || u >= 1 || w < 0 || w >= 1 {
		return color.NRGBA{}, false
	}
	r := s.img.Bounds()
	ix := r.Min.X + int(u*float64(r.Dx()))
	iy := r.Min.Y + int(w*float64(r.Dy()))
	return color.NRGBAModel.Convert(s.img.At(ix, iy)).(color.NRGBA), true
}

type compareRenderer struct {
	view *CompareView
}

func (r *compareRenderer) Layout(size fyne.Size) {
	v := r.view
	v.mu.Lock()
	v.width = size.Width
	v.mu.Unlock()

	v.raster.Resize(size)
	pad := theme.Padding()
	bs, as := v.beforeLabel.MinSize(), v.afterLabel.MinSize()
	v.beforeLabel.Resize(bs)
	v.beforeLabel.Move(fyne.NewPos(pad, pad))
	v.afterLabel.Resize(as)
	v.afterLabel.Move(fyne.NewPos(size.Width-as.Width-pad, pad))
}

func (r *compareRenderer) MinSize() fyne.Size {
	return r.view.MinSize()
}

func (r *compareRenderer) Refresh() {
	r.view.raster.Refresh()
	r.view.beforeLabel.Refresh()
	r.view.afterLabel.Refresh()
}

func (r *compareRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.raster, r.view.beforeLabel, r.view.afterLabel}
}

func (r *compareRenderer) Destroy() {}
