package types

import (
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/srand/beam/worker/pkg/utils"
)

const TaskIDSize = 16

// Unique identity of a submitted task.
type TaskID [TaskIDSize]byte

func NewTaskID() TaskID {
	return TaskID(uuid.New())
}

func TaskIDFromBinary(data []byte) (TaskID, error) {
	if len(data) != TaskIDSize {
		return TaskID{}, utils.ErrBadRequest
	}
	var tid TaskID
	copy(tid[:], data)
	return tid, nil
}

func (t TaskID) Binary() []byte {
	data := make([]byte, TaskIDSize)
	copy(data, t[:])
	return data
}

func (t TaskID) String() string {
	return hex.EncodeToString(t[:])
}
