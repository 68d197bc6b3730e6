package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFireEventRegistrationOrder(t *testing.T) {
	b := NewBroker()
	var calls []string
	b.AddHandler(SelectionStarted, func(interface{}) { calls = append(calls, "a") })
	b.AddHandler(SelectionStarted, func(interface{}) { calls = append(calls, "b") })
	b.AddHandler(SelectionCanceled, func(interface{}) { calls = append(calls, "other") })
	b.AddHandler(SelectionStarted, func(interface{}) { calls = append(calls, "c") })

	require.NoError(t, b.FireEvent(SelectionStarted, SelectionStartedEvent{}))
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestFireEventPassesPayload(t *testing.T) {
	b := NewBroker()
	var got SelectionStartedEvent
	b.AddHandler(SelectionStarted, func(data interface{}) {
		got = data.(SelectionStartedEvent)
	})

	require.NoError(t, b.FireEvent(SelectionStarted, SelectionStartedEvent{OffsetX: 3, OffsetY: 4}))
	assert.Equal(t, SelectionStartedEvent{OffsetX: 3, OffsetY: 4}, got)
}

func TestDuplicateRegistrationInvokesTwice(t *testing.T) {
	b := NewBroker()
	n := 0
	h := func(interface{}) { n++ }
	b.AddHandler(SelectionCanceled, h)
	b.AddHandler(SelectionCanceled, h)

	require.NoError(t, b.FireEvent(SelectionCanceled, nil))
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, b.HandlerCount(SelectionCanceled))
}

func TestFireEventWithoutHandlersIsNoop(t *testing.T) {
	b := NewBroker()
	assert.NoError(t, b.FireEvent(MouseOverAnnotation, nil))
}

func TestHandlerAddedDuringDispatchMissesInFlightEvent(t *testing.T) {
	b := NewBroker()
	late := 0
	b.AddHandler(SelectionCompleted, func(interface{}) {
		b.AddHandler(SelectionCompleted, func(interface{}) { late++ })
	})

	require.NoError(t, b.FireEvent(SelectionCompleted, nil))
	assert.Equal(t, 0, late)

	require.NoError(t, b.FireEvent(SelectionCompleted, nil))
	assert.Equal(t, 1, late)
}

func TestFireEventIsReentrant(t *testing.T) {
	b := NewBroker()
	var calls []string
	b.AddHandler(AnnotationEditSave, func(interface{}) {
		calls = append(calls, "save:start")
		require.NoError(t, b.FireEvent(AnnotationCreated, nil))
		calls = append(calls, "save:end")
	})
	b.AddHandler(AnnotationCreated, func(interface{}) { calls = append(calls, "created") })
	b.AddHandler(AnnotationEditSave, func(interface{}) { calls = append(calls, "save:second") })

	require.NoError(t, b.FireEvent(AnnotationEditSave, nil))
	assert.Equal(t, []string{"save:start", "created", "save:end", "save:second"}, calls)
}

func TestPanickingHandlerDoesNotAbortDispatch(t *testing.T) {
	b := NewBroker()
	var calls []int
	b.AddHandler(SelectionCompleted, func(interface{}) { calls = append(calls, 0) })
	b.AddHandler(SelectionCompleted, func(interface{}) { panic("boom") })
	b.AddHandler(SelectionCompleted, func(interface{}) { calls = append(calls, 2) })

	err := b.FireEvent(SelectionCompleted, nil)
	require.Error(t, err)
	assert.Equal(t, []int{0, 2}, calls)

	var herr *HandlerError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, SelectionCompleted, herr.Type)
	assert.Equal(t, 1, herr.Index)
	assert.Equal(t, "boom", herr.Value)
}
