package writequeue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/ladder-core/internal/models"
)

type fakeApplier struct {
	mu       sync.Mutex
	applied  []Job
	failN    map[Kind]int // number of times to fail before succeeding, per kind
	attempts map[Kind]int
}

func newFakeApplier() *fakeApplier {
	return &fakeApplier{failN: map[Kind]int{}, attempts: map[Kind]int{}}
}

func (f *fakeApplier) Apply(ctx context.Context, job Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[job.Kind]++
	if n := f.failN[job.Kind]; f.attempts[job.Kind] <= n {
		return errors.New("simulated failure")
	}
	f.applied = append(f.applied, job)
	return nil
}

func (f *fakeApplier) Applied() []Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Job, len(f.applied))
	copy(out, f.applied)
	return out
}

func newTestQueue(t *testing.T, applier Applier, deadLetterPath string) *Queue {
	t.Helper()
	q := New(PoolConfig{
		Depth:          16,
		DeadLetterPath: deadLetterPath,
		Applier:        applier,
		Logger:         zap.NewNop(),
	})
	if err := q.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(q.Stop)
	return q
}

func TestQueueAppliesJobsInOrderPerMatch(t *testing.T) {
	applier := newFakeApplier()
	q := newTestQueue(t, applier, "")

	for i := 0; i < 5; i++ {
		v := models.Report(i % 3)
		q.Enqueue(Job{Kind: KindUpdateMatchReport, MatchID: 42, Report: &v, ReportSlot: 1})
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(applier.Applied()) < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	applied := applier.Applied()
	if len(applied) != 5 {
		t.Fatalf("want 5 applied jobs, got %d", len(applied))
	}
	for i, job := range applied {
		if int(*job.Report) != i%3 {
			t.Fatalf("job %d out of order: got report %d", i, *job.Report)
		}
	}
}

func TestQueueRetriesThenSucceeds(t *testing.T) {
	applier := newFakeApplier()
	applier.failN[KindEnsurePlayer] = 2 // fail twice, succeed on 3rd attempt
	q := newTestQueue(t, applier, "")

	q.Enqueue(Job{Kind: KindEnsurePlayer})

	deadline := time.Now().Add(3 * time.Second)
	for len(applier.Applied()) < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(applier.Applied()) != 1 {
		t.Fatalf("expected job to eventually succeed after retries")
	}
}

func TestQueueDeadLettersAfterExhaustingRetries(t *testing.T) {
	dir := t.TempDir()
	dlPath := filepath.Join(dir, "dead-letter.jsonl")

	applier := newFakeApplier()
	applier.failN[KindEnsurePlayer] = 100 // always fails
	q := newTestQueue(t, applier, dlPath)

	q.Enqueue(Job{Kind: KindEnsurePlayer})

	deadline := time.Now().Add(5 * time.Second)
	var data []byte
	for time.Now().Before(deadline) {
		b, err := os.ReadFile(dlPath)
		if err == nil && len(b) > 0 {
			data = b
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(data) == 0 {
		t.Fatalf("expected dead-letter log to be written")
	}

	var rec deadLetterRecord
	if err := json.Unmarshal(data[:indexOfNewline(data)], &rec); err != nil {
		t.Fatalf("dead-letter record not valid JSON: %v", err)
	}
	if rec.Kind != KindEnsurePlayer {
		t.Fatalf("want kind %s, got %s", KindEnsurePlayer, rec.Kind)
	}
	if rec.Attempts != MaxAttempts {
		t.Fatalf("want %d attempts, got %d", MaxAttempts, rec.Attempts)
	}
}

func indexOfNewline(b []byte) int {
	for i, c := range b {
		if c == '\n' {
			return i
		}
	}
	return len(b)
}

func TestQueueNeverBlocksProducerWhenFull(t *testing.T) {
	applier := newFakeApplier()
	applier.failN[KindEnsurePlayer] = 1000 // never succeeds, keeps consumer busy retrying
	q := New(PoolConfig{Depth: 1, Applier: applier, Logger: zap.NewNop()})
	if err := q.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer q.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			q.Enqueue(Job{Kind: KindEnsurePlayer})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked producer when queue was full")
	}
}
