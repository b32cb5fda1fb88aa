package pubsub

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
	"github.com/fitpulse/ranking-engine/internal/platform/logging"
)

// subscriberBuffer of 1 gives every subscriber latest-wins delivery: a
// slow consumer skips intermediate snapshots instead of blocking publish.
const subscriberBuffer = 1

type subID int64

type subscriber struct {
	id     subID
	mu     sync.Mutex
	closed bool
	ch     chan ranking.Snapshot
}

// deliver pushes the snapshot with latest-wins semantics: when the buffer
// is full the queued snapshot is evicted first. Holding the subscriber
// lock keeps the send safe against a concurrent cancel closing the
// channel.
func (s *subscriber) deliver(snapshot ranking.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snapshot:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *subscriber) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Broker is the in-process snapshot feed behind the leaderboard stream.
// Publish replaces the retained snapshot per cohort and fans the new one
// out to every subscriber concurrently.
type Broker struct {
	mu     sync.RWMutex
	latest map[ranking.Cohort]ranking.Snapshot
	subs   map[ranking.Cohort]map[subID]*subscriber
	nextID subID
	logger *logging.Logger
}

func NewBroker(logger *logging.Logger) *Broker {
	return &Broker{
		latest: make(map[ranking.Cohort]ranking.Snapshot),
		subs:   make(map[ranking.Cohort]map[subID]*subscriber),
		logger: logger,
	}
}

// Publish retains the snapshot and delivers it to the cohort's
// subscribers. An older snapshot than the retained one is dropped so the
// feed stays monotonic even when recompute runs land out of order.
func (b *Broker) Publish(ctx context.Context, snapshot ranking.Snapshot) {
	b.mu.Lock()
	current, ok := b.latest[snapshot.Cohort]
	if ok && current.ComputedAt.After(snapshot.ComputedAt) {
		b.mu.Unlock()
		b.logger.DebugContext(ctx, "dropping stale snapshot publish",
			"cohort", string(snapshot.Cohort),
			"runId", snapshot.RunID,
		)
		return
	}
	b.latest[snapshot.Cohort] = snapshot

	targets := make([]*subscriber, 0, len(b.subs[snapshot.Cohort]))
	for _, sub := range b.subs[snapshot.Cohort] {
		targets = append(targets, sub)
	}
	b.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	var wg conc.WaitGroup
	for _, sub := range targets {
		sub := sub
		wg.Go(func() {
			sub.deliver(snapshot)
		})
	}
	wg.Wait()
}

// Subscribe registers a listener for the cohort's snapshot feed. The
// returned cancel func must be called to release the subscription; the
// channel is closed on cancel.
func (b *Broker) Subscribe(cohort ranking.Cohort) (<-chan ranking.Snapshot, func()) {
	b.mu.Lock()
	b.nextID++
	sub := &subscriber{
		id: b.nextID,
		ch: make(chan ranking.Snapshot, subscriberBuffer),
	}
	if b.subs[cohort] == nil {
		b.subs[cohort] = make(map[subID]*subscriber)
	}
	b.subs[cohort][sub.id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs[cohort], sub.id)
		b.mu.Unlock()
		sub.shutdown()
	}
	return sub.ch, cancel
}

// Latest returns the retained snapshot for the cohort, so a new stream
// subscriber gets the current board immediately instead of waiting for
// the next recompute.
func (b *Broker) Latest(cohort ranking.Cohort) (ranking.Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot, ok := b.latest[cohort]
	return snapshot, ok
}
