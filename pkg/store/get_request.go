package store

import (
	"sync"
	"time"

	"github.com/srand/beam/worker/pkg/types"
)

// A rendezvous between one blocked reader and the producers of the objects
// it waits for. The request is satisfied once numObjects of the requested
// ids have been set. A single request is registered in the store under every
// id it waits for; producers reach it through any of them.
type getRequest struct {
	// The distinct object ids involved in this request.
	objectIds map[types.ObjectID]struct{}

	// Number of objects required before the waiter is released.
	numObjects int

	// Whether the requested objects should be removed from the store
	// once the request completes.
	removeAfterGet bool

	mu      sync.Mutex
	objects map[types.ObjectID]*Object
	done    bool
	ready   chan struct{}
}

func newGetRequest(objectIds map[types.ObjectID]struct{}, numObjects int, removeAfterGet bool) *getRequest {
	if numObjects > len(objectIds) {
		panic("get request requires more objects than it waits for")
	}
	return &getRequest{
		objectIds:      objectIds,
		numObjects:     numObjects,
		removeAfterGet: removeAfterGet,
		objects:        map[types.ObjectID]*Object{},
		ready:          make(chan struct{}),
	}
}

func (r *getRequest) ObjectIds() map[types.ObjectID]struct{} {
	return r.objectIds
}

func (r *getRequest) ShouldRemoveObjects() bool {
	return r.removeAfterGet
}

// Record the arrival of an object. Ignored once the request is satisfied,
// and idempotent under duplicate ids.
func (r *getRequest) Set(id types.ObjectID, object *Object) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return
	}

	if _, ok := r.objects[id]; ok {
		return
	}

	r.objects[id] = object
	if len(r.objects) == r.numObjects {
		r.done = true
		close(r.ready)
	}
}

// Non-blocking lookup of an object recorded by Set.
func (r *getRequest) Get(id types.ObjectID) *Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.objects[id]
}

// Block until the request is satisfied, or the timeout expires.
// A negative timeout blocks forever. Returns whether the request
// was satisfied.
func (r *getRequest) Wait(timeout time.Duration) bool {
	if timeout < 0 {
		<-r.ready
		return true
	}

	select {
	case <-r.ready:
		return true
	case <-time.After(timeout):
		return false
	}
}
