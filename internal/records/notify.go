package records

import (
	"maps"
	"slices"
	"sync"

	"github.com/burnerhq/burner/internal/daily"
)

// DefaultSubscriptionBuffer is the channel capacity used when Subscribe is
// called with a non-positive buffer.
const DefaultSubscriptionBuffer = 16

// ChangeSet is the set of records touched by one committed store mutation.
type ChangeSet struct {
	Inserted []daily.Daily
	Updated  []daily.Daily
	Deleted  []daily.Daily
}

// Empty reports whether the change set carries no records.
func (c ChangeSet) Empty() bool {
	return len(c.Inserted) == 0 && len(c.Updated) == 0 && len(c.Deleted) == 0
}

// Subscription receives every ChangeSet published after it was created.
type Subscription struct {
	C <-chan ChangeSet

	ch     chan ChangeSet
	done   chan struct{}
	once   sync.Once
	broker *broker
	id     int
}

// Done is closed when the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close detaches the subscription. Pending and future publishes to it are dropped.
// Calling Close more than once is a no-op.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.broker.remove(s.id)
	})
}

// broker fans change sets out to subscriptions.
type broker struct {
	mu   sync.Mutex
	subs map[int]*Subscription
	next int
}

func newBroker() *broker {
	return &broker{subs: make(map[int]*Subscription)}
}

func (b *broker) subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan ChangeSet, buffer)
	sub := &Subscription{
		C:      ch,
		ch:     ch,
		done:   make(chan struct{}),
		broker: b,
		id:     b.next,
	}
	b.subs[sub.id] = sub
	b.next++
	return sub
}

func (b *broker) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// publish delivers cs to every live subscription in subscription order.
// It blocks while a subscriber's buffer is full, until that subscriber
// drains it or closes.
func (b *broker) publish(cs ChangeSet) {
	if cs.Empty() {
		return
	}

	b.mu.Lock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, id := range slices.Sorted(maps.Keys(b.subs)) {
		targets = append(targets, b.subs[id])
	}
	b.mu.Unlock()

	for _, sub := range targets {
		select {
		case sub.ch <- cs:
		case <-sub.done:
		}
	}
}
