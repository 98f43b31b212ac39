package store

import (
	"sync"
	"time"

	"github.com/srand/beam/worker/pkg/log"
	"github.com/srand/beam/worker/pkg/types"
	"github.com/srand/beam/worker/pkg/utils"
)

// Callback used to forward an object into the external object store.
// The id carries the raylet transport tag. Invoked while the store mutex is
// held and must not call back into the store.
type StoreInPlasma func(object *Object, id types.ObjectID)

// Statistics snapshot of the memory store.
type Stats struct {
	// Number of objects currently resident.
	Objects int

	// Number of ids awaiting promotion to the external store.
	PromotedToPlasma int

	// Number of blocking get registrations. A request waiting for
	// several ids is counted once per id.
	BlockedGets int

	// Number of registered asynchronous get callbacks.
	AsyncGets int

	// Total number of successful puts.
	Puts int64

	// Total number of get calls.
	Gets int64
}

// An in-process object store that coordinates producers and consumers of
// named values across goroutines. Values are published once with Put and
// consumed with blocking multi-object Get calls or single-shot asynchronous
// callbacks.
type MemoryStore struct {
	mu sync.Mutex

	// Currently resident values.
	objects map[types.ObjectID]*Object

	// Blocking waiters per id. A single request appears under each id
	// it waits for.
	objectGetRequests map[types.ObjectID][]*getRequest

	// One-shot async waiters per id. Fire on the first put of the id.
	objectAsyncGetRequests map[types.ObjectID][]func(*Object)

	// Ids for which a reader requested promotion before the value arrived.
	// The next put of such an id is also forwarded to the external store.
	promotedToPlasma map[types.ObjectID]struct{}

	storeInPlasma StoreInPlasma

	puts int64
	gets int64
}

// Create a new memory store. The storeInPlasma callback may be nil if
// promotion to the external object store is never requested.
func NewMemoryStore(storeInPlasma StoreInPlasma) *MemoryStore {
	return &MemoryStore{
		objects:                map[types.ObjectID]*Object{},
		objectGetRequests:      map[types.ObjectID][]*getRequest{},
		objectAsyncGetRequests: map[types.ObjectID][]func(*Object){},
		promotedToPlasma:       map[types.ObjectID]struct{}{},
		storeInPlasma:          storeInPlasma,
	}
}

// Publish an object under the given id. The store keeps its own copy of the
// payload. Returns ErrObjectExists if the id is already resident.
//
// All blocking waiters registered for the id observe the value. If any of
// them consumes on get, the value is not made resident. Pending async
// callbacks fire exactly once, outside the store mutex, in registration
// order.
func (s *MemoryStore) Put(id types.ObjectID, object *Object) error {
	if !id.IsDirectCall() {
		panic("only direct call objects may be put in the memory store")
	}

	entry := NewObject(object.Data(), object.Metadata(), true)

	var asyncCallbacks []func(*Object)

	s.mu.Lock()

	if _, ok := s.objects[id]; ok {
		s.mu.Unlock()
		return utils.ErrObjectExists
	}

	if callbacks, ok := s.objectAsyncGetRequests[id]; ok {
		asyncCallbacks = callbacks
		delete(s.objectAsyncGetRequests, id)
	}

	if _, ok := s.promotedToPlasma[id]; ok {
		if s.storeInPlasma == nil {
			panic("cannot promote object without a plasma callback")
		}
		s.storeInPlasma(object, id.WithTransportType(types.TransportRaylet))
		delete(s.promotedToPlasma, id)
	}

	shouldAddEntry := true
	for _, request := range s.objectGetRequests[id] {
		request.Set(id, entry)
		if request.ShouldRemoveObjects() {
			shouldAddEntry = false
		}
	}

	if shouldAddEntry {
		s.objects[id] = entry
	}

	s.puts++
	s.mu.Unlock()

	// Callbacks are user supplied and may re-enter the store.
	for _, cb := range asyncCallbacks {
		cb(entry)
	}

	return nil
}

// Get a list of objects from the store. The result has one slot per input
// id, filled in input order until numObjects slots are satisfied; unfilled
// slots are nil. Duplicate input ids each receive the same value.
//
// A negative timeout blocks until satisfied. On expiry the call returns
// ErrTimedOut together with the partial results. With removeAfterGet, the
// returned objects are consumed from the store.
func (s *MemoryStore) Get(objectIds []types.ObjectID, numObjects int, timeout time.Duration, removeAfterGet bool) ([]*Object, error) {
	results := make([]*Object, len(objectIds))

	var request *getRequest

	s.mu.Lock()
	s.gets++

	remaining := map[types.ObjectID]struct{}{}
	idsToRemove := map[types.ObjectID]struct{}{}

	count := 0
	for i := 0; i < len(objectIds) && count < numObjects; i++ {
		id := objectIds[i]
		if object, ok := s.objects[id]; ok {
			results[i] = object
			if removeAfterGet {
				// Removal is deferred, the same id may occupy
				// several input slots.
				idsToRemove[id] = struct{}{}
			}
			count++
		} else {
			remaining[id] = struct{}{}
		}
	}

	for id := range idsToRemove {
		delete(s.objects, id)
	}

	if len(remaining) == 0 || count >= numObjects {
		s.mu.Unlock()
		return results, nil
	}

	required := numObjects - (len(objectIds) - len(remaining))

	request = newGetRequest(remaining, required, removeAfterGet)
	for id := range request.ObjectIds() {
		s.objectGetRequests[id] = append(s.objectGetRequests[id], request)
	}
	s.mu.Unlock()

	// Block without holding the store mutex.
	done := request.Wait(timeout)

	s.mu.Lock()
	for i, id := range objectIds {
		if results[i] == nil {
			results[i] = request.Get(id)
		}
	}

	for id := range request.ObjectIds() {
		requests := s.objectGetRequests[id]
		for i, other := range requests {
			if other == request {
				s.objectGetRequests[id] = append(requests[:i], requests[i+1:]...)
				break
			}
		}
		if len(s.objectGetRequests[id]) == 0 {
			delete(s.objectGetRequests, id)
		}
	}
	s.mu.Unlock()

	if !done {
		return results, utils.ErrTimedOut
	}
	return results, nil
}

// Asynchronously get an object from the store. The callback fires exactly
// once with the object, immediately if already resident, otherwise on the
// next put of the id. The callback runs outside the store mutex.
func (s *MemoryStore) GetAsync(id types.ObjectID, callback func(*Object)) {
	var object *Object

	s.mu.Lock()
	if resident, ok := s.objects[id]; ok {
		object = resident
	} else {
		s.objectAsyncGetRequests[id] = append(s.objectAsyncGetRequests[id], callback)
	}
	s.mu.Unlock()

	if object != nil {
		callback(object)
	}
}

// Get a single object if resident. If the object is a plasma marker, nil is
// returned, the value already lives in the external store. If the object is
// not resident, nil is returned and the store guarantees that the object is
// forwarded to the external store once available. Requires a plasma callback
// when the object is not yet resident.
func (s *MemoryStore) GetOrPromoteToPlasma(id types.ObjectID) *Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	if object, ok := s.objects[id]; ok {
		if object.IsInPlasmaError() {
			return nil
		}
		return object
	}

	if s.storeInPlasma == nil {
		panic("cannot promote object without a plasma callback")
	}

	log.Tracef("promoting %s to plasma on next put", id)
	s.promotedToPlasma[id] = struct{}{}
	return nil
}

// Remove objects from the store. Pending waiters are not affected, they may
// still observe values set before the deletion, or time out.
func (s *MemoryStore) Delete(objectIds []types.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range objectIds {
		delete(s.objects, id)
	}
}

// Returns true if the store holds a real value for the id. Plasma markers
// defer to the external store and do not count as present.
func (s *MemoryStore) Contains(id types.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	object, ok := s.objects[id]
	return ok && !object.IsInPlasmaError()
}

// Returns a snapshot of store statistics.
func (s *MemoryStore) Statistics() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocked := 0
	for _, requests := range s.objectGetRequests {
		blocked += len(requests)
	}

	async := 0
	for _, callbacks := range s.objectAsyncGetRequests {
		async += len(callbacks)
	}

	return Stats{
		Objects:          len(s.objects),
		PromotedToPlasma: len(s.promotedToPlasma),
		BlockedGets:      blocked,
		AsyncGets:        async,
		Puts:             s.puts,
		Gets:             s.gets,
	}
}
