package boardstate

import (
	"context"
	"math"
	"sync"
	"time"

	"prismora-backend/internal/canvas"
)

const (
	PanDuration   = 300 * time.Millisecond
	FrameInterval = 16 * time.Millisecond
)

type Easing func(t float64) float64

func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// PanTween is one smooth pan from From to To.
type PanTween struct {
	Start    time.Time
	Duration time.Duration
	From     canvas.Point
	To       canvas.Point
	Easing   Easing

	cancel context.CancelFunc
	done   chan struct{}
}

// PanAt returns the pan at instant now and whether the tween has finished.
func (t *PanTween) PanAt(now time.Time) (canvas.Point, bool) {
	if t.Duration <= 0 {
		return t.To, true
	}
	progress := float64(now.Sub(t.Start)) / float64(t.Duration)
	if progress >= 1 {
		return t.To, true
	}
	if progress < 0 {
		progress = 0
	}
	e := t.Easing(progress)
	return canvas.Point{
		X: t.From.X + (t.To.X-t.From.X)*e,
		Y: t.From.Y + (t.To.Y-t.From.Y)*e,
	}, false
}

// Cancel stops the tween. The pan stays where the last frame left it.
func (t *PanTween) Cancel() {
	t.cancel()
}

// Done is closed once the tween finished or was cancelled.
func (t *PanTween) Done() <-chan struct{} {
	return t.done
}

// PanAnimator drives pan tweens on a Store. Starting a tween invalidates the
// one before it, so at most one tween writes to the store.
type PanAnimator struct {
	store    *Store
	duration time.Duration
	frame    time.Duration
	now      func() time.Time

	mu      sync.Mutex
	gen     uint64
	current *PanTween

	// writeMu orders frame writes; a.mu is never held across SetPan so
	// store listeners may call Stop or AnimateTo.
	writeMu sync.Mutex
}

func NewPanAnimator(store *Store) *PanAnimator {
	return &PanAnimator{
		store:    store,
		duration: PanDuration,
		frame:    FrameInterval,
		now:      time.Now,
	}
}

// AnimateTo tweens the store's pan to target. The tween also stops when ctx
// is done.
func (a *PanAnimator) AnimateTo(ctx context.Context, target canvas.Point) *PanTween {
	ctx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	if a.current != nil {
		a.current.cancel()
	}
	a.gen++
	gen := a.gen
	tween := &PanTween{
		Start:    a.now(),
		Duration: a.duration,
		From:     a.store.Canvas().Pan,
		To:       target,
		Easing:   EaseOutCubic,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	a.current = tween
	a.mu.Unlock()

	go a.run(ctx, gen, tween)
	return tween
}

// Stop cancels the running tween, if any.
func (a *PanAnimator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		a.current.cancel()
		a.current = nil
	}
	a.gen++
}

func (a *PanAnimator) run(ctx context.Context, gen uint64, t *PanTween) {
	defer close(t.done)
	defer t.cancel()

	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pan, finished := t.PanAt(a.now())
			if !a.apply(gen, pan) || finished {
				return
			}
		}
	}
}

// apply writes pan unless a newer tween has taken over. A frame that passed
// the check just before a newer tween started still lands, but always ahead
// of the newer tween's frames.
func (a *PanAnimator) apply(gen uint64, pan canvas.Point) bool {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	current := gen == a.gen
	a.mu.Unlock()
	if !current {
		return false
	}
	a.store.SetPan(pan)
	return true
}
