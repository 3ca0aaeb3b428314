package prefetch

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPrefetcherRunsJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)
	done := make(chan struct{}, 10)

	p := New(16, 2, 1000, func(_ context.Context, j Job) {
		mu.Lock()
		seen[j.key()]++
		mu.Unlock()
		done <- struct{}{}
	})

	p.Enqueue(Job{ListingID: "1001", Index: 0})
	p.Enqueue(Job{ListingID: "1002", Index: 0})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("jobs did not run")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if seen["1001:0"] != 1 || seen["1002:0"] != 1 {
		t.Errorf("seen = %v", seen)
	}
}

func TestPrefetcherDeduplicatesInFlight(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 4)

	p := New(16, 1, 1000, func(_ context.Context, j Job) {
		started <- struct{}{}
		<-block
	})

	j := Job{ListingID: "1001", Index: 0}
	p.Enqueue(j)
	<-started

	// Same job again while the first is still running: dropped.
	p.Enqueue(j)

	select {
	case <-started:
		t.Fatal("duplicate job ran while original was in flight")
	case <-time.After(100 * time.Millisecond):
	}
	close(block)
}

func TestPrefetcherDropsWhenSaturated(t *testing.T) {
	block := make(chan struct{})
	p := New(1, 1, 1000, func(_ context.Context, j Job) {
		<-block
	})

	// One running, one queued, the rest dropped without blocking.
	for i := 0; i < 10; i++ {
		doneCh := make(chan struct{})
		go func(i int) {
			p.Enqueue(Job{ListingID: "L", Index: i})
			close(doneCh)
		}(i)
		select {
		case <-doneCh:
		case <-time.After(time.Second):
			t.Fatal("Enqueue blocked on a full queue")
		}
	}
	close(block)
}
