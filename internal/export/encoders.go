package export

import (
	"errors"
	"image"
	"sync"
)

// ErrNoEncoder is returned for a format whose encoder was not linked in.
var ErrNoEncoder = errors.New("no encoder registered")

// LossyEncoder encodes img at a quality in [1,100].
type LossyEncoder func(img image.Image, quality int) ([]byte, error)

var (
	encodersMu sync.RWMutex
	encoders   = map[Format]LossyEncoder{}
)

// Register makes a lossy encoder available for f. The WebP encoder needs
// cgo, so it lives in its own package and registers itself on import.
func Register(f Format, enc LossyEncoder) {
	encodersMu.Lock()
	defer encodersMu.Unlock()
	if enc == nil {
		delete(encoders, f)
		return
	}
	encoders[f] = enc
}

// Registered reports whether f can be encoded.
func Registered(f Format) bool {
	if f == PNG {
		return true
	}
	encodersMu.RLock()
	defer encodersMu.RUnlock()
	_, ok := encoders[f]
	return ok
}

func encoderFor(f Format) (LossyEncoder, bool) {
	encodersMu.RLock()
	defer encodersMu.RUnlock()
	enc, ok := encoders[f]
	return enc, ok
}
