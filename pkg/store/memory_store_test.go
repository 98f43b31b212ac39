package store

import (
	"sync"
	"testing"
	"time"

	"github.com/srand/beam/worker/pkg/protocol"
	"github.com/srand/beam/worker/pkg/types"
	"github.com/srand/beam/worker/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type spillRecord struct {
	object *Object
	id     types.ObjectID
}

type MemoryStoreTestSuite struct {
	suite.Suite

	store *MemoryStore

	mu      sync.Mutex
	spilled []spillRecord
}

func (s *MemoryStoreTestSuite) SetupTest() {
	s.spilled = nil
	s.store = NewMemoryStore(func(object *Object, id types.ObjectID) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.spilled = append(s.spilled, spillRecord{object, id})
	})
}

func (s *MemoryStoreTestSuite) numSpilled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spilled)
}

func (s *MemoryStoreTestSuite) TestPutGet() {
	id := types.NewObjectID()

	err := s.store.Put(id, NewObject([]byte("value"), nil, true))
	assert.NoError(s.T(), err)

	results, err := s.store.Get([]types.ObjectID{id}, 1, -1, false)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("value"), results[0].Data())
	assert.True(s.T(), s.store.Contains(id))
}

func (s *MemoryStoreTestSuite) TestPutGetConsuming() {
	id := types.NewObjectID()

	err := s.store.Put(id, NewObject([]byte("value"), nil, true))
	assert.NoError(s.T(), err)

	results, err := s.store.Get([]types.ObjectID{id}, 1, -1, true)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("value"), results[0].Data())
	assert.False(s.T(), s.store.Contains(id))
}

func (s *MemoryStoreTestSuite) TestPutDuplicate() {
	id := types.NewObjectID()

	assert.NoError(s.T(), s.store.Put(id, NewObject([]byte("1"), nil, true)))
	assert.Equal(s.T(), utils.ErrObjectExists, s.store.Put(id, NewObject([]byte("2"), nil, true)))

	results, err := s.store.Get([]types.ObjectID{id}, 1, -1, false)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("1"), results[0].Data())
}

func (s *MemoryStoreTestSuite) TestConcurrentPuts() {
	id := types.NewObjectID()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.store.Put(id, NewObject([]byte("value"), nil, true)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(s.T(), 1, succeeded)
}

func (s *MemoryStoreTestSuite) TestPutRequiresDirectCall() {
	id := types.NewObjectID().WithTransportType(types.TransportRaylet)

	assert.Panics(s.T(), func() {
		s.store.Put(id, NewObject([]byte("value"), nil, true))
	})
}

func (s *MemoryStoreTestSuite) TestPutOwnsCopy() {
	id := types.NewObjectID()

	data := []byte("value")
	assert.NoError(s.T(), s.store.Put(id, NewObject(data, nil, false)))
	data[0] = 'x'

	results, err := s.store.Get([]types.ObjectID{id}, 1, -1, false)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("value"), results[0].Data())
}

func (s *MemoryStoreTestSuite) TestGetSomeOfMany() {
	a := types.NewObjectID()
	b := types.NewObjectID()
	c := types.NewObjectID()

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.store.Put(b, NewObject([]byte("b"), nil, true))
		s.store.Put(c, NewObject([]byte("c"), nil, true))
	}()

	results, err := s.store.Get([]types.ObjectID{a, b, c}, 2, time.Second, false)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), results[0])
	assert.Equal(s.T(), []byte("b"), results[1].Data())
	assert.Equal(s.T(), []byte("c"), results[2].Data())
}

func (s *MemoryStoreTestSuite) TestGetTimeout() {
	id := types.NewObjectID()

	results, err := s.store.Get([]types.ObjectID{id}, 1, 50*time.Millisecond, false)
	assert.Equal(s.T(), utils.ErrTimedOut, err)
	assert.Nil(s.T(), results[0])

	// The request must have been unregistered on return.
	assert.Equal(s.T(), 0, s.store.Statistics().BlockedGets)
}

func (s *MemoryStoreTestSuite) TestGetDuplicateIdsResident() {
	id := types.NewObjectID()

	assert.NoError(s.T(), s.store.Put(id, NewObject([]byte("value"), nil, true)))

	results, err := s.store.Get([]types.ObjectID{id, id}, 2, -1, true)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("value"), results[0].Data())
	assert.Same(s.T(), results[0], results[1])
	assert.False(s.T(), s.store.Contains(id))
}

func (s *MemoryStoreTestSuite) TestGetDuplicateIdsBlocking() {
	id := types.NewObjectID()

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.store.Put(id, NewObject([]byte("value"), nil, true))
	}()

	results, err := s.store.Get([]types.ObjectID{id, id}, 2, time.Second, false)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("value"), results[0].Data())
	assert.Same(s.T(), results[0], results[1])
}

func (s *MemoryStoreTestSuite) TestConsumingWaiterSuppressesEntry() {
	id := types.NewObjectID()

	done := make(chan []*Object)
	go func() {
		results, _ := s.store.Get([]types.ObjectID{id}, 1, time.Second, true)
		done <- results
	}()

	// Wait until the reader has registered its request.
	assert.Eventually(s.T(), func() bool {
		return s.store.Statistics().BlockedGets == 1
	}, time.Second, time.Millisecond)

	assert.NoError(s.T(), s.store.Put(id, NewObject([]byte("value"), nil, true)))

	results := <-done
	assert.Equal(s.T(), []byte("value"), results[0].Data())
	assert.False(s.T(), s.store.Contains(id))
}

func (s *MemoryStoreTestSuite) TestGetAsync() {
	id := types.NewObjectID()

	var order []string
	var mu sync.Mutex
	record := func(name string) func(*Object) {
		return func(object *Object) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}

	s.store.GetAsync(id, record("first"))
	s.store.GetAsync(id, record("second"))

	assert.NoError(s.T(), s.store.Put(id, NewObject([]byte("y"), nil, true)))

	// Registered callbacks fire during the put, in registration order.
	mu.Lock()
	assert.Equal(s.T(), []string{"first", "second"}, order)
	mu.Unlock()

	// Already resident lookups fire synchronously.
	var value []byte
	s.store.GetAsync(id, func(object *Object) {
		value = object.Data()
	})
	assert.Equal(s.T(), []byte("y"), value)

	// No callbacks left behind.
	assert.Equal(s.T(), 0, s.store.Statistics().AsyncGets)
}

func (s *MemoryStoreTestSuite) TestGetOrPromoteToPlasma() {
	id := types.NewObjectID()

	// Absent object, promotion recorded.
	assert.Nil(s.T(), s.store.GetOrPromoteToPlasma(id))
	assert.Equal(s.T(), 1, s.store.Statistics().PromotedToPlasma)

	// The next put is forwarded to plasma with a raylet tagged id.
	assert.NoError(s.T(), s.store.Put(id, NewObject([]byte("big"), nil, true)))
	assert.Equal(s.T(), 1, s.numSpilled())
	assert.Equal(s.T(), id.WithTransportType(types.TransportRaylet), s.spilled[0].id)
	assert.Equal(s.T(), []byte("big"), s.spilled[0].object.Data())

	// Later puts of the same id are not forwarded again.
	s.store.Delete([]types.ObjectID{id})
	assert.NoError(s.T(), s.store.Put(id, NewObject([]byte("big"), nil, true)))
	assert.Equal(s.T(), 1, s.numSpilled())
}

func (s *MemoryStoreTestSuite) TestGetOrPromoteToPlasmaResident() {
	id := types.NewObjectID()

	assert.NoError(s.T(), s.store.Put(id, NewObject([]byte("small"), nil, true)))

	object := s.store.GetOrPromoteToPlasma(id)
	assert.NotNil(s.T(), object)
	assert.Equal(s.T(), []byte("small"), object.Data())
	assert.Equal(s.T(), 0, s.numSpilled())
}

func (s *MemoryStoreTestSuite) TestGetOrPromoteToPlasmaMarker() {
	id := types.NewObjectID()

	marker := NewObject(nil, protocol.ErrorTypeObjectInPlasma.Metadata(), true)
	assert.NoError(s.T(), s.store.Put(id, marker))

	// The real value lives in plasma, readers are deferred there.
	assert.Nil(s.T(), s.store.GetOrPromoteToPlasma(id))
	assert.False(s.T(), s.store.Contains(id))
}

func (s *MemoryStoreTestSuite) TestGetOrPromoteRequiresCallback() {
	bare := NewMemoryStore(nil)

	assert.Panics(s.T(), func() {
		bare.GetOrPromoteToPlasma(types.NewObjectID())
	})
}

func (s *MemoryStoreTestSuite) TestDelete() {
	a := types.NewObjectID()
	b := types.NewObjectID()

	assert.NoError(s.T(), s.store.Put(a, NewObject([]byte("a"), nil, true)))
	assert.NoError(s.T(), s.store.Put(b, NewObject([]byte("b"), nil, true)))

	s.store.Delete([]types.ObjectID{a, b})
	assert.False(s.T(), s.store.Contains(a))
	assert.False(s.T(), s.store.Contains(b))
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &MemoryStoreTestSuite{})
}
