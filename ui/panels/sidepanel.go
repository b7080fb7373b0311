// Package panels provides UI panels for the application.
package panels

import (
	"context"

	"cutout-studio/internal/app"
	"cutout-studio/internal/config"
	"cutout-studio/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	queuePanel      *QueuePanel
	backgroundPanel *BackgroundPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(ctx context.Context, state *app.State, cfg *config.Config, p *prefs.Prefs) *SidePanel {
	sp := &SidePanel{state: state}

	sp.queuePanel = NewQueuePanel(ctx, state, p)
	sp.backgroundPanel = NewBackgroundPanel(state, cfg, p)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Images", sp.queuePanel.Container()),
		container.NewTabItem("Background", sp.backgroundPanel.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.queuePanel.SetWindow(w)
	sp.backgroundPanel.SetWindow(w)
}

// Queue returns the queue panel.
func (sp *SidePanel) Queue() *QueuePanel {
	return sp.queuePanel
}

// ShowBackground switches to the background tab.
func (sp *SidePanel) ShowBackground() {
	sp.container.SelectIndex(1)
}

// Background returns the background and export panel.
func (sp *SidePanel) Background() *BackgroundPanel {
	return sp.backgroundPanel
}
