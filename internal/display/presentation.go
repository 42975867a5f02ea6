package display

import (
	"context"
	"errors"
	"sync"
)

// ErrPresentationUnsupported reports a platform without fullscreen support.
var ErrPresentationUnsupported = errors.New("fullscreen unsupported")

// PresentationController switches the platform's fullscreen mode.
type PresentationController interface {
	EnterFullscreen(ctx context.Context) error
	ExitFullscreen(ctx context.Context) error
}

// NoopPresentation is used when nothing can go fullscreen.
type NoopPresentation struct{}

func (NoopPresentation) EnterFullscreen(context.Context) error { return ErrPresentationUnsupported }

func (NoopPresentation) ExitFullscreen(context.Context) error { return ErrPresentationUnsupported }

// FullscreenController toggles fullscreen. On an unsupported platform the
// toggle is a silent no-op.
type FullscreenController struct {
	mu         sync.Mutex
	controller PresentationController
	active     bool
}

// NewFullscreenController wraps a PresentationController. Nil means unsupported.
func NewFullscreenController(controller PresentationController) *FullscreenController {
	if controller == nil {
		controller = NoopPresentation{}
	}
	return &FullscreenController{controller: controller}
}

// Active reports whether fullscreen is on.
func (f *FullscreenController) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Toggle flips fullscreen and returns the resulting state.
func (f *FullscreenController) Toggle(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.active {
		err = f.controller.ExitFullscreen(ctx)
	} else {
		err = f.controller.EnterFullscreen(ctx)
	}
	if errors.Is(err, ErrPresentationUnsupported) {
		return f.active, nil
	}
	if err != nil {
		return f.active, err
	}
	f.active = !f.active
	return f.active, nil
}

// Sync records the mode the platform actually reports, such as after the
// viewer pressed Esc or the browser refused a request without a user gesture.
func (f *FullscreenController) Sync(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = active
}
