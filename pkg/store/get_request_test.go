package store

import (
	"testing"
	"time"

	"github.com/srand/beam/worker/pkg/types"
	"github.com/stretchr/testify/assert"
)

func idSet(ids ...types.ObjectID) map[types.ObjectID]struct{} {
	set := map[types.ObjectID]struct{}{}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestGetRequestSatisfied(t *testing.T) {
	a := types.NewObjectID()
	b := types.NewObjectID()

	request := newGetRequest(idSet(a, b), 2, false)

	done := make(chan bool)
	go func() {
		done <- request.Wait(-1)
	}()

	request.Set(a, NewObject([]byte("a"), nil, true))
	request.Set(b, NewObject([]byte("b"), nil, true))

	assert.True(t, <-done)
	assert.Equal(t, []byte("a"), request.Get(a).Data())
	assert.Equal(t, []byte("b"), request.Get(b).Data())
}

func TestGetRequestPartialThreshold(t *testing.T) {
	a := types.NewObjectID()
	b := types.NewObjectID()

	// One out of two satisfies the request.
	request := newGetRequest(idSet(a, b), 1, false)
	request.Set(b, NewObject([]byte("b"), nil, true))

	assert.True(t, request.Wait(time.Second))
	assert.Nil(t, request.Get(a))
	assert.NotNil(t, request.Get(b))
}

func TestGetRequestTimeout(t *testing.T) {
	a := types.NewObjectID()

	request := newGetRequest(idSet(a), 1, false)
	assert.False(t, request.Wait(10*time.Millisecond))

	// Late arrivals are still recorded.
	request.Set(a, NewObject([]byte("a"), nil, true))
	assert.True(t, request.Wait(time.Second))
}

func TestGetRequestSetIdempotent(t *testing.T) {
	a := types.NewObjectID()
	b := types.NewObjectID()

	request := newGetRequest(idSet(a, b), 2, false)

	first := NewObject([]byte("1"), nil, true)
	request.Set(a, first)
	request.Set(a, NewObject([]byte("2"), nil, true))

	assert.Same(t, first, request.Get(a))
	assert.False(t, request.Wait(10*time.Millisecond))
}

func TestGetRequestIgnoresSetWhenReady(t *testing.T) {
	a := types.NewObjectID()
	b := types.NewObjectID()

	request := newGetRequest(idSet(a, b), 1, false)
	request.Set(a, NewObject([]byte("a"), nil, true))
	assert.True(t, request.Wait(time.Second))

	request.Set(b, NewObject([]byte("b"), nil, true))
	assert.Nil(t, request.Get(b))
}

func TestGetRequestRequiresSaneThreshold(t *testing.T) {
	a := types.NewObjectID()

	assert.Panics(t, func() {
		newGetRequest(idSet(a), 2, false)
	})
}
