package server

import (
	"testing"

	"github.com/lectio/lectio/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubTopicRouting(t *testing.T) {
	hub := NewHub()
	all := hub.Subscribe(TopicAll)
	byRun := hub.Subscribe("run-1")
	byLecture := hub.Subscribe("lec-9")
	other := hub.Subscribe("run-2")

	hub.Publish(service.Progress{RunID: "run-1", LectureID: "lec-9", Stage: service.StageBoard})

	assert.Len(t, all.ch, 1)
	assert.Len(t, byRun.ch, 1)
	assert.Len(t, byLecture.ch, 1)
	assert.Len(t, other.ch, 0)

	p := <-byRun.Events()
	assert.Equal(t, service.StageBoard, p.Stage)
}

func TestHubEmptyLectureDoesNotMatchEmptyTopic(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("")
	hub.Publish(service.Progress{RunID: "run-1", Stage: service.StageMedia})
	assert.Len(t, sub.ch, 0)
}

func TestHubSlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TopicAll)

	for i := 0; i < 50; i++ {
		hub.Publish(service.Progress{RunID: "run-1", Stage: service.StageOCR})
	}
	assert.Len(t, sub.ch, cap(sub.ch), "overflow events are dropped, not blocking")
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TopicAll)
	hub.Unsubscribe(sub)

	_, ok := <-sub.Events()
	require.False(t, ok)

	// Publishing after unsubscribe must not panic.
	hub.Publish(service.Progress{RunID: "run-1"})
}
