package protocol

import (
	"bytes"
	"strconv"
)

// Failure classification published to readers of a task's return ids.
// The value is encoded into the metadata of a sentinel object.
type ErrorType int32

const (
	ErrorTypeTaskExecutionException ErrorType = 1
	ErrorTypeObjectInPlasma         ErrorType = 2
	ErrorTypeWorkerDied             ErrorType = 3
)

// The sentinel metadata encoding of the error type.
func (e ErrorType) Metadata() []byte {
	return []byte(strconv.Itoa(int(e)))
}

// Returns true if the metadata marks an object that lives in the
// external object store rather than in process memory.
func IsInPlasmaMetadata(metadata []byte) bool {
	return bytes.Equal(metadata, ErrorTypeObjectInPlasma.Metadata())
}
