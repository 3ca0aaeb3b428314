// Package prefetch warms the photo cache in the background after a comps
// search so the first gallery render doesn't pay a full RETS round trip.
package prefetch

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Job struct {
	ListingID string
	Index     int
}

func (j Job) key() string { return j.ListingID + ":" + strconv.Itoa(j.Index) }

type Prefetcher struct {
	ch      chan Job
	inFly   sync.Map // job key -> struct{}
	limiter *rate.Limiter
	Do      func(ctx context.Context, j Job)
}

// New starts workerCount workers. The limiter caps fetches per second so the
// prefetcher cannot hammer the MLS.
func New(capacity, workerCount int, perSecond float64, do func(ctx context.Context, j Job)) *Prefetcher {
	if capacity <= 0 {
		capacity = 256
	}
	if workerCount <= 0 {
		workerCount = 2
	}
	if perSecond <= 0 {
		perSecond = 2
	}
	p := &Prefetcher{
		ch:      make(chan Job, capacity),
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		Do:      do,
	}
	for i := 0; i < workerCount; i++ {
		go p.worker()
	}
	return p
}

// Enqueue schedules a job unless it is already queued; drops when saturated.
func (p *Prefetcher) Enqueue(j Job) {
	if _, exists := p.inFly.LoadOrStore(j.key(), struct{}{}); exists {
		return
	}
	select {
	case p.ch <- j:
	default:
		p.inFly.Delete(j.key())
	}
}

func (p *Prefetcher) worker() {
	for j := range p.ch {
		if err := p.limiter.Wait(context.Background()); err != nil {
			p.inFly.Delete(j.key())
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		func() {
			defer func() {
				p.inFly.Delete(j.key())
				cancel()
			}()
			if p.Do != nil {
				p.Do(ctx, j)
			}
		}()
	}
}
