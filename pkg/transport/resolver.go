package transport

import (
	"fmt"
	"sync"

	"github.com/srand/beam/worker/pkg/protocol"
	"github.com/srand/beam/worker/pkg/store"
	"github.com/srand/beam/worker/pkg/types"
)

// Tracks one task whose arguments are still being fetched.
type taskState struct {
	task *protocol.TaskSpec

	// Dependencies not yet resolved from the store.
	pending map[types.ObjectID]struct{}
}

// Resolves the direct call arguments of a task against the memory store and
// inlines the values into the task message before it is submitted.
type DependencyResolver struct {
	mu          sync.Mutex
	memoryStore *store.MemoryStore
	numPending  int
}

func NewDependencyResolver(memoryStore *store.MemoryStore) *DependencyResolver {
	return &DependencyResolver{
		memoryStore: memoryStore,
	}
}

// Resolve the direct call arguments of the task. Once all argument values
// have been fetched and inlined into the task message, onComplete is
// invoked, possibly synchronously when all values are already resident.
//
// Argument slots with more than one object id are not supported.
func (r *DependencyResolver) ResolveDependencies(task *protocol.TaskSpec, onComplete func()) {
	pending := map[types.ObjectID]struct{}{}
	dependencies := []types.ObjectID{}
	for i := 0; i < task.NumArgs(); i++ {
		count := task.ArgIdCount(i)
		if count > 1 {
			panic(fmt.Sprintf("task %q has an argument with %d object ids, at most one is supported", task.Name, count))
		}
		if count == 1 {
			if id := task.ArgId(i, 0); id.IsDirectCall() {
				if _, ok := pending[id]; !ok {
					pending[id] = struct{}{}
					dependencies = append(dependencies, id)
				}
			}
		}
	}

	if len(dependencies) == 0 {
		onComplete()
		return
	}

	// The state is dropped once the last fetch callback has fired.
	// Callbacks may fire on any goroutine, the pending set is only
	// touched under the resolver mutex.
	state := &taskState{task: task, pending: pending}

	r.mu.Lock()
	r.numPending++
	r.mu.Unlock()

	for _, id := range dependencies {
		r.memoryStore.GetAsync(id, func(object *store.Object) {
			if object == nil {
				panic("dependency callback fired without an object")
			}

			complete := false

			r.mu.Lock()
			delete(state.pending, id)
			doInlineObjectValue(id, object, state.task)
			if len(state.pending) == 0 {
				complete = true
				r.numPending--
			}
			r.mu.Unlock()

			if complete {
				onComplete()
			}
		})
	}
}

// Number of tasks whose dependencies are still being resolved. Advisory.
func (r *DependencyResolver) NumPendingTasks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.numPending
}

// Replace the object id reference in the task's argument slots with the
// resolved value. Small values are inlined into the message; values that
// live in the external object store are passed by reference with a raylet
// tagged id.
func doInlineObjectValue(id types.ObjectID, object *store.Object, task *protocol.TaskSpec) {
	found := false
	for i := 0; i < task.NumArgs(); i++ {
		if task.ArgIdCount(i) == 0 {
			continue
		}
		if task.ArgId(i, 0) != id {
			continue
		}

		arg := task.MutableArg(i)
		arg.ClearObjectIds()
		if object.IsInPlasmaError() {
			// Pass the argument by reference through the external
			// object store.
			arg.AddObjectId(id.WithTransportType(types.TransportRaylet).Binary())
		} else {
			if object.HasData() {
				arg.SetData(object.Data())
			}
			if object.HasMetadata() {
				arg.SetMetadata(object.Metadata())
			}
		}
		found = true
	}

	if !found {
		panic(fmt.Sprintf("object id %s not found in task %q", id, task.Name))
	}
}
