package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lithammer/shortuuid/v4"
)

type Event interface {
	Clone() Event
}

type CancelFunc func()

// Filter reports whether a subscriber wants to receive the event.
type Filter func(e Event) bool

// KindFilter accepts slot events of the given kinds. No kinds accepts all.
func KindFilter(kinds ...string) Filter {
	if len(kinds) == 0 {
		return func(Event) bool { return true }
	}

	set := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}

	return func(e Event) bool {
		evt, ok := e.(*SlotEvent)
		if !ok {
			return false
		}

		_, ok = set[evt.Kind]

		return ok
	}
}

type EventSource interface {
	Events(filters ...Filter) (<-chan Event, CancelFunc, error)
}

type subscriber struct {
	ch      chan Event
	filters []Filter
}

func (s *subscriber) accepts(e Event) bool {
	for _, f := range s.filters {
		if !f(e) {
			return false
		}
	}

	return true
}

// PubSub delivers every published event to all subscribers whose filters
// accept it. A subscriber with a full queue misses the event, the publisher
// never blocks.
type PubSub struct {
	queue  chan Event
	closed bool
	lock   sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	subscribers    map[string]*subscriber
	subscriberLock sync.Mutex

	dropped atomic.Uint64
}

func NewPubSub() *PubSub {
	w := &PubSub{
		queue:       make(chan Event, 1024),
		subscribers: map[string]*subscriber{},
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())

	go w.broadcast()

	return w
}

func (w *PubSub) Publish(e Event) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.closed {
		return fmt.Errorf("pubsub is closed")
	}

	select {
	case w.queue <- e.Clone():
	default:
		w.dropped.Add(1)
		return fmt.Errorf("publisher queue full")
	}

	return nil
}

// Dropped returns the number of events that have been lost because a queue
// was full.
func (w *PubSub) Dropped() uint64 {
	return w.dropped.Load()
}

// Close stops the delivery and closes the channels of all subscribers.
func (w *PubSub) Close() {
	w.lock.Lock()
	if w.closed {
		w.lock.Unlock()
		return
	}
	w.closed = true
	w.lock.Unlock()

	w.cancel()

	w.subscriberLock.Lock()
	for _, s := range w.subscribers {
		close(s.ch)
	}
	w.subscribers = map[string]*subscriber{}
	w.subscriberLock.Unlock()
}

// Subscribe returns a channel with all events that pass the filters. The
// channel is closed by the returned CancelFunc or by Close.
func (w *PubSub) Subscribe(filters ...Filter) (<-chan Event, CancelFunc) {
	s := &subscriber{
		ch:      make(chan Event, 1024),
		filters: filters,
	}

	w.subscriberLock.Lock()
	id := shortuuid.New()
	for {
		if _, ok := w.subscribers[id]; !ok {
			break
		}
		id = shortuuid.New()
	}
	w.subscribers[id] = s
	w.subscriberLock.Unlock()

	unsubscribe := func() {
		w.subscriberLock.Lock()
		defer w.subscriberLock.Unlock()

		if _, ok := w.subscribers[id]; !ok {
			return
		}

		delete(w.subscribers, id)
		close(s.ch)
	}

	return s.ch, unsubscribe
}

func (w *PubSub) broadcast() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case e := <-w.queue:
			w.subscriberLock.Lock()
			for _, s := range w.subscribers {
				if !s.accepts(e) {
					continue
				}

				select {
				case s.ch <- e.Clone():
				default:
					w.dropped.Add(1)
				}
			}
			w.subscriberLock.Unlock()
		}
	}
}
