package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanByteSize(t *testing.T) {
	assert.Equal(t, "100B", HumanByteSize(100))
	assert.Equal(t, "2KiB", HumanByteSize(2048))
	assert.Equal(t, "1.5MiB", HumanByteSize(3*1024*1024/2))
}
