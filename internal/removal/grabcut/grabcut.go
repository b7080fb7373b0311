// Package grabcut implements an offline background remover on top of
// OpenCV's GrabCut segmentation.
package grabcut

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"cutout-studio/internal/logging"
	"cutout-studio/internal/removal"

	"gocv.io/x/gocv"
)

// GrabCut mask labels.
const (
	labelBackground   = 0
	labelForeground   = 1
	labelProbBackgnd  = 2
	labelProbForegrnd = 3
)

// Options tunes the segmentation.
type Options struct {
	// Iterations of the GrabCut energy minimisation.
	Iterations int
	// MaxSide bounds the working resolution; the mask is upscaled afterwards.
	MaxSide uint
	// Inset is the fraction of each side assumed to be background.
	Inset float64
}

// DefaultOptions returns the options used when a field is zero.
func DefaultOptions() Options {
	return Options{Iterations: 5, MaxSide: 1024, Inset: 0.05}
}

// Remover segments the subject assuming it lies inside an inset rectangle.
type Remover struct {
	opts Options
	log  *slog.Logger
}

var _ removal.Remover = (*Remover)(nil)

// New creates a GrabCut remover.
func New(opts Options) *Remover {
	def := DefaultOptions()
	if opts.Iterations <= 0 {
		opts.Iterations = def.Iterations
	}
	if opts.MaxSide == 0 {
		opts.MaxSide = def.MaxSide
	}
	if opts.Inset <= 0 || opts.Inset >= 0.5 {
		opts.Inset = def.Inset
	}
	return &Remover{opts: opts, log: logging.For("removal.grabcut")}
}

// Remove implements removal.Remover.
func (r *Remover) Remove(ctx context.Context, img image.Image, progress removal.ProgressFunc) (image.Image, error) {
	removal.Report(progress, 0)
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return nil, fmt.Errorf("%w: image too small (%dx%d)", removal.ErrRemovalFailed, b.Dx(), b.Dy())
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", removal.ErrRemovalFailed, err)
	}

	work := removal.ResizeWithinMax(img, r.opts.MaxSide)
	src, err := gocv.ImageToMatRGB(work)
	if err != nil {
		return nil, fmt.Errorf("%w: convert image: %w", removal.ErrRemovalFailed, err)
	}
	defer src.Close()

	w, h := src.Cols(), src.Rows()
	mask := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	defer mask.Close()
	bgd := gocv.NewMat()
	defer bgd.Close()
	fgd := gocv.NewMat()
	defer fgd.Close()

	rect := insetRect(w, h, r.opts.Inset)
	r.log.Debug("segmenting", "width", w, "height", h, "rect", rect, "iterations", r.opts.Iterations)

	gocv.GrabCut(src, &mask, rect, &bgd, &fgd, 1, gocv.GCInitWithRect)
	removal.Report(progress, 100/(r.opts.Iterations+2))
	for i := 1; i < r.opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", removal.ErrRemovalFailed, err)
		}
		gocv.GrabCut(src, &mask, rect, &bgd, &fgd, 1, gocv.GCEval)
		removal.Report(progress, (i+1)*100/(r.opts.Iterations+2))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", removal.ErrRemovalFailed, err)
	}

	alpha, err := refine(mask)
	if err != nil {
		return nil, err
	}
	removal.Report(progress, 95)

	out := removal.ApplyMask(img, alpha)
	removal.Report(progress, 100)
	return out, nil
}

// insetRect returns the probable-foreground rectangle, at least one pixel
// in from every edge.
func insetRect(w, h int, inset float64) image.Rectangle {
	dx := max(1, int(float64(w)*inset))
	dy := max(1, int(float64(h)*inset))
	return image.Rect(dx, dy, w-dx, h-dy)
}

// refine turns GrabCut labels into a smoothed alpha mask.
func refine(labels gocv.Mat) (*image.Gray, error) {
	w, h := labels.Cols(), labels.Rows()
	bin := binarize(labels.ToBytes())

	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, bin)
	if err != nil {
		return nil, fmt.Errorf("%w: mask mat: %w", removal.ErrRemovalFailed, err)
	}
	defer m.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(5, 5))
	defer kernel.Close()
	gocv.MorphologyEx(m, &m, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(m, &m, gocv.MorphClose, kernel)
	gocv.GaussianBlur(m, &m, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	out := image.NewGray(image.Rect(0, 0, w, h))
	copy(out.Pix, m.ToBytes())
	return out, nil
}

// binarize maps definite and probable foreground labels to 255.
func binarize(labels []byte) []byte {
	out := make([]byte, len(labels))
	for i, v := range labels {
		if v == labelForeground || v == labelProbForegrnd {
			out[i] = 255
		}
	}
	return out
}
