package transport

import (
	"testing"
	"time"

	"github.com/srand/beam/worker/pkg/protocol"
	"github.com/srand/beam/worker/pkg/store"
	"github.com/srand/beam/worker/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(args ...*protocol.TaskArg) *protocol.TaskSpec {
	return &protocol.TaskSpec{
		TaskId:     types.NewTaskID().Binary(),
		Name:       "task",
		NumReturns: 1,
		Args:       args,
	}
}

func refArg(id types.ObjectID) *protocol.TaskArg {
	return &protocol.TaskArg{ObjectIds: [][]byte{id.Binary()}}
}

func TestResolveInlinesResidentValue(t *testing.T) {
	memoryStore := store.NewMemoryStore(nil)
	resolver := NewDependencyResolver(memoryStore)

	id := types.NewObjectID()
	require.NoError(t, memoryStore.Put(id, store.NewObject([]byte("v"), []byte("m"), true)))

	task := newTask(refArg(id))

	// All dependencies are resident, completion is synchronous.
	complete := false
	resolver.ResolveDependencies(task, func() {
		complete = true
	})

	assert.True(t, complete)
	assert.Equal(t, 0, resolver.NumPendingTasks())
	assert.Equal(t, 0, task.ArgIdCount(0))
	assert.Equal(t, []byte("v"), task.Args[0].Data)
	assert.Equal(t, []byte("m"), task.Args[0].Metadata)
}

func TestResolvePromotesPlasmaValue(t *testing.T) {
	memoryStore := store.NewMemoryStore(nil)
	resolver := NewDependencyResolver(memoryStore)

	id := types.NewObjectID()
	marker := store.NewObject(nil, protocol.ErrorTypeObjectInPlasma.Metadata(), true)
	require.NoError(t, memoryStore.Put(id, marker))

	task := newTask(refArg(id))

	complete := false
	resolver.ResolveDependencies(task, func() {
		complete = true
	})

	// The argument is passed by reference through the external store.
	assert.True(t, complete)
	require.Equal(t, 1, task.ArgIdCount(0))
	assert.Equal(t, id.WithTransportType(types.TransportRaylet), task.ArgId(0, 0))
	assert.Empty(t, task.Args[0].Data)
	assert.Empty(t, task.Args[0].Metadata)
}

func TestResolveWaitsForMissingValues(t *testing.T) {
	memoryStore := store.NewMemoryStore(nil)
	resolver := NewDependencyResolver(memoryStore)

	a := types.NewObjectID()
	b := types.NewObjectID()
	task := newTask(refArg(a), refArg(b))

	complete := make(chan struct{})
	resolver.ResolveDependencies(task, func() {
		close(complete)
	})

	assert.Equal(t, 1, resolver.NumPendingTasks())

	require.NoError(t, memoryStore.Put(a, store.NewObject([]byte("a"), nil, true)))
	select {
	case <-complete:
		t.Fatal("completed with a dependency still pending")
	case <-time.After(10 * time.Millisecond):
	}

	require.NoError(t, memoryStore.Put(b, store.NewObject([]byte("b"), nil, true)))
	select {
	case <-complete:
	case <-time.After(time.Second):
		t.Fatal("never completed")
	}

	assert.Equal(t, 0, resolver.NumPendingTasks())
	assert.Equal(t, []byte("a"), task.Args[0].Data)
	assert.Equal(t, []byte("b"), task.Args[1].Data)
}

func TestResolveIgnoresNonDirectArguments(t *testing.T) {
	memoryStore := store.NewMemoryStore(nil)
	resolver := NewDependencyResolver(memoryStore)

	id := types.NewObjectID().WithTransportType(types.TransportRaylet)
	task := newTask(refArg(id), &protocol.TaskArg{Data: []byte("inline")})

	complete := false
	resolver.ResolveDependencies(task, func() {
		complete = true
	})

	// Raylet references and by-value arguments are left untouched.
	assert.True(t, complete)
	assert.Equal(t, 1, task.ArgIdCount(0))
	assert.Equal(t, []byte("inline"), task.Args[1].Data)
}

func TestResolveRejectsMultiIdArguments(t *testing.T) {
	memoryStore := store.NewMemoryStore(nil)
	resolver := NewDependencyResolver(memoryStore)

	arg := &protocol.TaskArg{ObjectIds: [][]byte{
		types.NewObjectID().Binary(),
		types.NewObjectID().Binary(),
	}}

	assert.Panics(t, func() {
		resolver.ResolveDependencies(newTask(arg), func() {})
	})
}

func TestInlineValueSharedBySlots(t *testing.T) {
	memoryStore := store.NewMemoryStore(nil)
	resolver := NewDependencyResolver(memoryStore)

	id := types.NewObjectID()
	require.NoError(t, memoryStore.Put(id, store.NewObject([]byte("v"), nil, true)))

	// The same id may occupy several argument slots.
	task := newTask(refArg(id), refArg(id))

	complete := false
	resolver.ResolveDependencies(task, func() {
		complete = true
	})

	assert.True(t, complete)
	assert.Equal(t, []byte("v"), task.Args[0].Data)
	assert.Equal(t, []byte("v"), task.Args[1].Data)
}
