package protocol

import (
	"fmt"

	"github.com/srand/beam/worker/pkg/types"
)

// A single positional task argument.
// An argument is passed either by reference (ObjectIds) or by value
// (Data/Metadata), never both.
type TaskArg struct {
	ObjectIds [][]byte
	Data      []byte
	Metadata  []byte
}

// Drop all object id references from the argument.
func (a *TaskArg) ClearObjectIds() {
	a.ObjectIds = nil
}

// Append an object id reference in binary form.
func (a *TaskArg) AddObjectId(id []byte) {
	a.ObjectIds = append(a.ObjectIds, id)
}

func (a *TaskArg) SetData(data []byte) {
	a.Data = data
}

func (a *TaskArg) SetMetadata(metadata []byte) {
	a.Metadata = metadata
}

// Specification of a task to execute on a remote worker.
type TaskSpec struct {
	TaskId     []byte
	Name       string
	Args       []*TaskArg
	NumReturns int64
}

// Returns the identity of the task.
func (t *TaskSpec) TaskID() types.TaskID {
	tid, err := types.TaskIDFromBinary(t.TaskId)
	if err != nil {
		panic(fmt.Sprintf("task %q carries a malformed task id", t.Name))
	}
	return tid
}

// Number of positional arguments.
func (t *TaskSpec) NumArgs() int {
	return len(t.Args)
}

// Number of object id references in argument slot i.
func (t *TaskSpec) ArgIdCount(i int) int {
	return len(t.Args[i].ObjectIds)
}

// The k:th object id reference of argument slot i.
func (t *TaskSpec) ArgId(i, k int) types.ObjectID {
	oid, err := types.ObjectIDFromBinary(t.Args[i].ObjectIds[k])
	if err != nil {
		panic(fmt.Sprintf("task %q carries a malformed object id in arg %d", t.Name, i))
	}
	return oid
}

// The argument slot at index i, for mutation in place.
func (t *TaskSpec) MutableArg(i int) *TaskArg {
	return t.Args[i]
}

// The object id of the index:th return value. Return indices start at 1.
func (t *TaskSpec) ReturnId(index int) types.ObjectID {
	return types.ForTaskReturn(t.TaskID(), index)
}

type PushTaskRequest struct {
	TaskSpec *TaskSpec
}

// A return value produced by a task.
type ReturnObject struct {
	ObjectId []byte
	Data     []byte
	Metadata []byte
}

type PushTaskReply struct {
	ReturnObjects []*ReturnObject
}

type LeaseRequest struct {
	ResourceSpec *TaskSpec
}

type LeaseReply struct{}

type ReturnWorkerRequest struct {
	WorkerId string
}

type ReturnWorkerReply struct{}

// Subscription to the stream of granted leases.
type WatchLeasesRequest struct {
	WorkerId string
}

// A granted worker lease, streamed by the lease service.
type LeaseGrant struct {
	Host string
	Port int32
}

// Network address of a leased worker. Used as cache key by the submitter.
type WorkerAddress struct {
	Host string
	Port int32
}

func (a WorkerAddress) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}
