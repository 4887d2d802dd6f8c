package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRunCheckpoint_PartitionDone tests completed-partition bookkeeping
func TestRunCheckpoint_PartitionDone(t *testing.T) {
	cp := &RunCheckpoint{
		SourceID:            "openstates",
		Partition:           "CA",
		Cursor:              4,
		CompletedPartitions: []string{"AL", "AK"},
	}

	assert.True(t, cp.PartitionDone("AL"))
	assert.False(t, cp.PartitionDone("CA"))

	cp.MarkPartitionDone("CA")
	assert.True(t, cp.PartitionDone("CA"))
	assert.Equal(t, "", cp.Partition)
	assert.Equal(t, 0, cp.Cursor)

	// Marking twice must not duplicate the entry
	cp.MarkPartitionDone("CA")
	assert.Equal(t, []string{"AL", "AK", "CA"}, cp.CompletedPartitions)
}

// TestRunCheckpoint_NilSafe tests that a nil checkpoint means a fresh start
func TestRunCheckpoint_NilSafe(t *testing.T) {
	var cp *RunCheckpoint
	assert.False(t, cp.PartitionDone("CA"))
}
