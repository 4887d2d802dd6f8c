package domain

import "time"

// RunCheckpoint is the durable resume state for one source adapter.
// It is created when the first page of a partition is fetched, rewritten
// after every successfully processed page, and cleared when a full run
// across all partitions completes. A crash therefore loses at most one
// page of work.
type RunCheckpoint struct {
	// SourceID identifies the adapter this checkpoint belongs to.
	SourceID string `json:"sourceId"`

	// Partition is the partition currently in flight (a state code or a
	// congress number as a string). Empty between partitions.
	Partition string `json:"partition,omitempty"`

	// Cursor is the next page number or record offset within Partition.
	Cursor int `json:"cursor"`

	// Watermark bounds the "updated since" window the interrupted run was using.
	Watermark time.Time `json:"watermark"`

	// CompletedPartitions lists partitions already swept in this run.
	CompletedPartitions []string `json:"completedPartitions"`

	// Processed, Updated and Inserted carry running totals across resumes.
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Inserted  int `json:"inserted"`

	// UpdatedAt is when the checkpoint was last written.
	UpdatedAt time.Time `json:"updatedAt"`
}

// PartitionDone reports whether the named partition has already been
// completed in the run this checkpoint describes.
func (c *RunCheckpoint) PartitionDone(partition string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.CompletedPartitions {
		if p == partition {
			return true
		}
	}
	return false
}

// MarkPartitionDone records a completed partition and resets the cursor.
func (c *RunCheckpoint) MarkPartitionDone(partition string) {
	if !c.PartitionDone(partition) {
		c.CompletedPartitions = append(c.CompletedPartitions, partition)
	}
	c.Partition = ""
	c.Cursor = 0
}

// Watermark is the single global record bounding "since" queries for the
// next scheduled run. It advances at the end of every run attempt,
// regardless of per-source outcomes; missed work rides the extended
// window of the next run.
type Watermark struct {
	// LastRun is when the last run attempt finished.
	LastRun time.Time `json:"lastRun"`
}
