package transport

import (
	"github.com/srand/beam/worker/pkg/log"
	"github.com/srand/beam/worker/pkg/protocol"
	"github.com/srand/beam/worker/pkg/store"
	"github.com/srand/beam/worker/pkg/types"
	"github.com/srand/beam/worker/pkg/utils"
)

// Publish the return values of a completed task to the memory store.
// Duplicate puts are treated as already seen.
func WriteObjectsToMemoryStore(reply *protocol.PushTaskReply, memoryStore *store.MemoryStore) {
	for _, ret := range reply.ReturnObjects {
		id, err := types.ObjectIDFromBinary(ret.ObjectId)
		if err != nil {
			log.Errorf("Dropping return object with malformed id: %v", err)
			continue
		}

		object := store.NewObject(ret.Data, ret.Metadata, true)
		if err := memoryStore.Put(id, object); err != nil && err != utils.ErrObjectExists {
			log.Errorf("Failed to store return object %s: %v", id, err)
		}
	}
}

// Publish failure sentinels for every return id of a failed task. Readers
// of the return ids observe objects whose metadata encodes the error type.
func TreatTaskAsFailed(taskId types.TaskID, numReturns int, errorType protocol.ErrorType, memoryStore *store.MemoryStore) {
	log.Debugf("Treating task %s as failed: %d", taskId, errorType)

	for i := 1; i <= numReturns; i++ {
		id := types.ForTaskReturn(taskId, i)
		object := store.NewObject(nil, errorType.Metadata(), true)
		if err := memoryStore.Put(id, object); err != nil && err != utils.ErrObjectExists {
			log.Errorf("Failed to store error sentinel %s: %v", id, err)
		}
	}
}
