package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectIDBinaryRoundtrip(t *testing.T) {
	id := NewObjectID()

	decoded, err := ObjectIDFromBinary(id.Binary())
	assert.NoError(t, err)
	assert.Equal(t, id, decoded)

	_, err = ObjectIDFromBinary([]byte("short"))
	assert.Error(t, err)
}

func TestObjectIDTransportType(t *testing.T) {
	id := NewObjectID()
	assert.True(t, id.IsDirectCall())

	raylet := id.WithTransportType(TransportRaylet)
	assert.False(t, raylet.IsDirectCall())

	// The tag participates in equality and in the binary encoding.
	assert.NotEqual(t, id, raylet)
	assert.NotEqual(t, id.Binary(), raylet.Binary())
	assert.Equal(t, id, raylet.WithTransportType(TransportDirect))
}

func TestObjectIDAsMapKey(t *testing.T) {
	id := NewObjectID()

	seen := map[ObjectID]bool{id: true}
	decoded, _ := ObjectIDFromBinary(id.Binary())
	assert.True(t, seen[decoded])
	assert.False(t, seen[id.WithTransportType(TransportRaylet)])
}

func TestForTaskReturn(t *testing.T) {
	task := NewTaskID()

	first := ForTaskReturn(task, 1)
	second := ForTaskReturn(task, 2)

	assert.True(t, first.IsDirectCall())
	assert.NotEqual(t, first, second)
	assert.Equal(t, first, ForTaskReturn(task, 1))

	other := ForTaskReturn(NewTaskID(), 1)
	assert.NotEqual(t, first, other)
}

func TestTaskIDBinaryRoundtrip(t *testing.T) {
	task := NewTaskID()

	decoded, err := TaskIDFromBinary(task.Binary())
	assert.NoError(t, err)
	assert.Equal(t, task, decoded)

	_, err = TaskIDFromBinary([]byte("short"))
	assert.Error(t, err)
}
