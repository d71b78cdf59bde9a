// Package ui is the desktop system-tray surface. It shows the state of the
// current composition and offers a quit entry; everything else happens over
// the HTTP API.
package ui

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/storycut/storycut-agent/internal/compose"
)

type Tray struct {
	service *compose.Service
	logger  *slog.Logger

	segmentsItem *systray.MenuItem
	clipsItem    *systray.MenuItem
	fpsItem      *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Service *compose.Service
	Logger  *slog.Logger
	OnQuit  func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		service: cfg.Service,
		logger:  cfg.Logger,
		onQuit:  cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("StoryCut")
	systray.SetTooltip("StoryCut Agent")

	t.segmentsItem = systray.AddMenuItem("Segments: 0", "Loaded transcript segments")
	t.segmentsItem.Disable()

	t.clipsItem = systray.AddMenuItem("Clips: 0", "Clips on the timeline")
	t.clipsItem.Disable()

	t.fpsItem = systray.AddMenuItem("FPS: not set", "Current frame rate")
	t.fpsItem.Disable()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit StoryCut Agent")

	t.refresh()

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.refresh()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.segmentsItem.SetTitle(fmt.Sprintf("Segments: %d", t.service.SegmentCount()))
	t.clipsItem.SetTitle(fmt.Sprintf("Clips: %d", len(t.service.Composition().Clips)))

	if fps, set := t.service.FPS(); set {
		t.fpsItem.SetTitle(fmt.Sprintf("FPS: %g", fps))
	} else {
		t.fpsItem.SetTitle("FPS: not set")
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}
