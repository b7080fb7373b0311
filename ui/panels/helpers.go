package panels

import (
	"fmt"
	"math"

	"cutout-studio/pkg/colorutil"
	"cutout-studio/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
)

// lastDir returns the remembered dialog directory, or nil.
func lastDir(p *prefs.Prefs) fyne.ListableURI {
	path := p.String(prefs.KeyLastDir, "")
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// ZoomText formats a zoom factor as a whole percentage.
func ZoomText(z float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(z*100)))
}

// NormalizeHex validates a user-typed colour and returns it as "#rrggbb".
func NormalizeHex(s string) (string, error) {
	c, err := colorutil.ParseHex(s)
	if err != nil {
		return "", err
	}
	return colorutil.ToHex(c), nil
}
