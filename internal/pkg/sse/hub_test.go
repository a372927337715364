package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	h := NewHub()

	employee, cleanupEmployee := h.Subscribe(UserTopic("7"), RoleTopic("employee"))
	defer cleanupEmployee()
	manager, cleanupManager := h.Subscribe(UserTopic("3"), RoleTopic("manager"))
	defer cleanupManager()

	h.Publish(Event{Event: EventRegularizationUpdated, Data: "r1"}, UserTopic("7"), RoleTopic("manager"))

	select {
	case e := <-employee:
		assert.Equal(t, EventRegularizationUpdated, e.Event)
		assert.Equal(t, UserTopic("7"), e.Topic)
	default:
		t.Fatal("employee did not receive the event")
	}

	select {
	case e := <-manager:
		assert.Equal(t, RoleTopic("manager"), e.Topic)
	default:
		t.Fatal("manager did not receive the event")
	}
}

func TestHub_DeliversOncePerChannel(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe(UserTopic("7"), RoleTopic("hr"))
	defer cleanup()

	h.Publish(Event{Event: EventRegularizationUpdated}, UserTopic("7"), RoleTopic("hr"))

	require.Len(t, ch, 1)
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe(UserTopic("7"), RoleTopic("employee"))

	assert.Equal(t, 1, h.SubscriberCount(UserTopic("7")))
	assert.Equal(t, 1, h.TotalSubscribers())

	cleanup()
	cleanup()

	assert.Equal(t, 0, h.SubscriberCount(UserTopic("7")))
	assert.Equal(t, 0, h.TotalSubscribers())

	_, open := <-ch
	assert.False(t, open)

	h.Publish(Event{Event: EventRegularizationUpdated}, UserTopic("7"))
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	h := NewHub()
	_, cleanup := h.Subscribe(UserTopic("7"))
	defer cleanup()

	for i := 0; i < 50; i++ {
		h.Publish(Event{Event: EventAttendanceUpdated}, UserTopic("7"))
	}
}
