// Package display shows the output states on an SSD1306 OLED panel.
package display

import (
	"fmt"
	"strings"
	"sync"

	"github.com/larsks/display1306/v2/display"
	"github.com/larsks/display1306/v2/display/fakedriver"
	"github.com/larsks/ledremote/internal/controller"
	"github.com/rs/zerolog/log"
)

const title = "*** LEDREMOTE ***"

// Screen is the part of display.Display the panel draws on.
type Screen interface {
	Init() error
	ClearScreen() error
	PrintLines(row int, lines []string) error
	Update() error
	Close() error
}

// Panel renders controller snapshots on a screen.
type Panel struct {
	screen Screen
	mutex  sync.Mutex
}

// Open builds a display. dryRun selects the fake driver so the panel can
// run on machines without an OLED attached.
func Open(dryRun bool) (*display.Display, error) {
	var d *display.Display
	var err error

	if dryRun {
		d, err = display.NewDisplay().WithDriver(fakedriver.NewFakeSSD1306()).Build()
	} else {
		d, err = display.NewDisplay().Build()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisplayInit, err)
	}
	return d, nil
}

// NewPanel initializes the screen and clears it.
func NewPanel(screen Screen) (*Panel, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisplayInit, err)
	}
	if err := screen.ClearScreen(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisplayInit, err)
	}
	return &Panel{screen: screen}, nil
}

// Lines formats a snapshot as display lines.
func Lines(snap controller.Snapshot) []string {
	lines := []string{title}
	for i, name := range snap.Names {
		state := "off"
		if snap.States[i] {
			state = "ON"
		}
		lines = append(lines, fmt.Sprintf("%d %-10s %s", i+1, strings.ToUpper(name), state))
	}
	return lines
}

// StatusChanged implements controller.Observer.
func (p *Panel) StatusChanged(snap controller.Snapshot) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.screen.ClearScreen(); err != nil {
		log.Warn().Err(err).Msg("failed to clear display")
		return
	}
	if err := p.screen.PrintLines(0, Lines(snap)); err != nil {
		log.Warn().Err(err).Msg("failed to draw status")
		return
	}
	if err := p.screen.Update(); err != nil {
		log.Warn().Err(err).Msg("failed to update display")
	}
}

// Close blanks and releases the screen.
func (p *Panel) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.screen.ClearScreen() //nolint:errcheck
	return p.screen.Close()
}
