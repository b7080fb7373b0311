// Package backends builds the configured removal.Remover.
package backends

import (
	"fmt"

	"cutout-studio/internal/config"
	"cutout-studio/internal/removal"
	"cutout-studio/internal/removal/grabcut"
)

// Names of the supported backends.
const (
	GrabCut = "grabcut"
	HTTP    = "http"
)

// New returns the remover named by cfg.Backend.
func New(cfg config.RemovalConfig) (removal.Remover, error) {
	switch cfg.Backend {
	case GrabCut, "":
		return grabcut.New(grabcut.Options{
			Iterations: cfg.Iterations,
			MaxSide:    cfg.MaxSide,
		}), nil
	case HTTP:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("removal backend %q needs an endpoint", cfg.Backend)
		}
		return removal.NewHTTP(cfg.Endpoint, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown removal backend %q", cfg.Backend)
	}
}
