package server

import (
	"sync"

	"github.com/lectio/lectio/internal/service"
)

// TopicAll subscribes a client to progress from every run.
const TopicAll = "*"

// Hub fans pipeline progress events out to websocket subscribers. A
// subscriber names the run or lecture it wants to follow, or TopicAll.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// Subscription is one subscriber's feed of progress events.
type Subscription struct {
	topic string
	ch    chan service.Progress
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers interest in a topic. The returned channel is buffered;
// slow consumers lose events rather than blocking the pipeline.
func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{topic: topic, ch: make(chan service.Progress, 16)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	close(sub.ch)
}

// Publish delivers a progress event to subscribers of its run or lecture.
func (h *Hub) Publish(p service.Progress) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.topic != TopicAll && sub.topic != p.RunID && (p.LectureID == "" || sub.topic != p.LectureID) {
			continue
		}
		select {
		case sub.ch <- p:
		default:
		}
	}
}

// Events returns the subscriber's receive channel.
func (s *Subscription) Events() <-chan service.Progress {
	return s.ch
}
