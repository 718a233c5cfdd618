package services

import (
	"context"
	"testing"
	"time"

	"luckydraw/internal/storage"
)

func TestScheduler_DrivesDrawToCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := storage.NewRepository(storage.NewMemoryKV())
	if err := repo.SaveParticipants(ctx, annBoCy); err != nil {
		t.Fatalf("save participants: %v", err)
	}

	winners := make(chan string, 1)
	e := NewEngine(repo,
		WithSpinTick(time.Millisecond),
		WithRevealDelays(time.Millisecond, time.Millisecond),
		WithListener(func(ev Event) {
			if ev.Type == EventWinner {
				winners <- ev.Message
			}
		}),
	)
	s := NewScheduler(e)
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	if err := e.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := e.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	select {
	case name := <-winners:
		if name == "" {
			t.Error("Expected a winner name")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for the winner")
	}

	got, _ := repo.Winners(ctx)
	if len(got) != 1 {
		t.Errorf("Expected 1 winner, got %d", len(got))
	}

	// shutting down mid-spin leaves the engine idle
	_ = e.Start(ctx)
	cancel()
	<-done
	if e.Phase() != PhaseIdle {
		t.Errorf("Expected idle after shutdown, got %s", e.Phase())
	}
}
