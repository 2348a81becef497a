package boardstate

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"prismora-backend/internal/canvas"

	"github.com/google/uuid"
)

func TestEaseOutCubic(t *testing.T) {
	if EaseOutCubic(0) != 0 || EaseOutCubic(1) != 1 {
		t.Error("easing endpoints wrong")
	}
	if got := EaseOutCubic(0.5); math.Abs(got-0.875) > 1e-12 {
		t.Errorf("Expected 0.875, got %v", got)
	}
}

func TestPanTween_PanAt(t *testing.T) {
	start := time.Unix(0, 0)
	tw := &PanTween{
		Start:    start,
		Duration: PanDuration,
		From:     canvas.Point{X: 0, Y: 0},
		To:       canvas.Point{X: 100, Y: -200},
		Easing:   EaseOutCubic,
	}

	p, done := tw.PanAt(start.Add(150 * time.Millisecond))
	if done {
		t.Error("tween finished early")
	}
	if math.Abs(p.X-87.5) > 1e-9 || math.Abs(p.Y+175) > 1e-9 {
		t.Errorf("Expected (87.5,-175), got %v", p)
	}

	p, done = tw.PanAt(start.Add(time.Second))
	if !done || p != tw.To {
		t.Errorf("Expected finished at target, got %v %v", p, done)
	}
}

func waitDone(t *testing.T, tw *PanTween) {
	t.Helper()
	select {
	case <-tw.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tween did not finish")
	}
}

func TestPanAnimator_ReachesTarget(t *testing.T) {
	s := NewStore(uuid.New())
	a := NewPanAnimator(s)
	a.duration = 40 * time.Millisecond
	a.frame = 2 * time.Millisecond

	target := canvas.Point{X: 300, Y: 120}
	tw := a.AnimateTo(context.Background(), target)
	waitDone(t, tw)

	if got := s.Canvas().Pan; got != target {
		t.Errorf("Expected pan %v, got %v", target, got)
	}
}

func TestPanAnimator_NewTweenCancelsOld(t *testing.T) {
	s := NewStore(uuid.New())
	a := NewPanAnimator(s)
	a.duration = time.Hour
	a.frame = 2 * time.Millisecond

	first := a.AnimateTo(context.Background(), canvas.Point{X: 1000, Y: 1000})
	a.duration = 20 * time.Millisecond
	second := a.AnimateTo(context.Background(), canvas.Point{X: -50, Y: 10})

	waitDone(t, first)
	waitDone(t, second)
	if got := s.Canvas().Pan; got != (canvas.Point{X: -50, Y: 10}) {
		t.Errorf("Expected second target, got %v", got)
	}
}

func TestPanAnimator_Stop(t *testing.T) {
	s := NewStore(uuid.New())
	a := NewPanAnimator(s)
	a.duration = time.Hour
	a.frame = time.Millisecond

	tw := a.AnimateTo(context.Background(), canvas.Point{X: 1000, Y: 0})
	a.Stop()
	waitDone(t, tw)

	pan := s.Canvas().Pan
	time.Sleep(10 * time.Millisecond)
	if s.Canvas().Pan != pan {
		t.Error("pan changed after Stop")
	}
}

func TestPanAnimator_ListenerCanStop(t *testing.T) {
	s := NewStore(uuid.New())
	a := NewPanAnimator(s)
	a.duration = time.Hour
	a.frame = time.Millisecond

	// a user drag interrupting the tween from inside a change listener
	s.Subscribe(func(c Change) {
		if c.Kind == ChangeCanvas {
			a.Stop()
		}
	})

	tw := a.AnimateTo(context.Background(), canvas.Point{X: 100, Y: 100})
	waitDone(t, tw)
}

func TestPanAnimator_ListenerCanRetarget(t *testing.T) {
	s := NewStore(uuid.New())
	a := NewPanAnimator(s)
	a.duration = time.Hour
	a.frame = time.Millisecond

	target := canvas.Point{X: -40, Y: 25}
	var next *PanTween
	retargeted := make(chan struct{})
	var once sync.Once
	s.Subscribe(func(c Change) {
		if c.Kind != ChangeCanvas {
			return
		}
		once.Do(func() {
			a.duration = 10 * time.Millisecond
			next = a.AnimateTo(context.Background(), target)
			close(retargeted)
		})
	})

	first := a.AnimateTo(context.Background(), canvas.Point{X: 1000, Y: 1000})
	waitDone(t, first)
	select {
	case <-retargeted:
	case <-time.After(2 * time.Second):
		t.Fatal("listener never retargeted")
	}
	waitDone(t, next)
	if got := s.Canvas().Pan; got != target {
		t.Errorf("Expected pan %v, got %v", target, got)
	}
}
