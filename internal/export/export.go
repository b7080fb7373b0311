// Package export encodes finished images and names the files they are
// written to.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is an output encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// DefaultWebPQuality is used when Options.Quality is unset.
const DefaultWebPQuality = 90

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrEncode is returned when an encoder produced no data.
	ErrEncode = errors.New("encode produced no data")
)

// ParseFormat accepts "png" or "webp", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case PNG, WebP:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// MIME returns the content type.
func (f Format) MIME() string { return "image/" + string(f) }

// Options tunes lossy encoders. PNG ignores it.
type Options struct {
	// Quality is the WebP quality in [1,100]; 0 selects DefaultWebPQuality.
	Quality int
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format, opts Options) error {
	data, err := EncodeBytes(img, f, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// EncodeBytes encodes img in the given format.
func EncodeBytes(img image.Image, f Format, opts Options) ([]byte, error) {
	if img == nil {
		return nil, ErrEncode
	}
	var (
		data []byte
		err  error
	)
	switch f {
	case PNG:
		var buf bytes.Buffer
		err = png.Encode(&buf, img)
		data = buf.Bytes()
	case WebP:
		enc, ok := encoderFor(f)
		if !ok {
			return nil, fmt.Errorf("encode %s: %w", f, ErrNoEncoder)
		}
		q := opts.Quality
		if q <= 0 {
			q = DefaultWebPQuality
		}
		data, err = enc(img, q)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("encode %s: %w", f, ErrEncode)
	}
	return data, nil
}

// Filename derives the download name: the original's base without its last
// extension, then "_no-bg" and the format's extension.
func Filename(original string, f Format) string {
	base := filepath.Base(original)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "image"
	}
	return base + "_no-bg" + f.Ext()
}

// Artifact is an encoded image ready to be saved.
type Artifact struct {
	Filename string
	Format   Format
	Data     []byte
}

// Export encodes img and names it after original.
func Export(img image.Image, original string, f Format, opts Options) (Artifact, error) {
	data, err := EncodeBytes(img, f, opts)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Filename: Filename(original, f), Format: f, Data: data}, nil
}

// WriteFile writes the artifact into dir and returns the full path.
func WriteFile(dir string, a Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
