package download

import "sync/atomic"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
//
// Counts are a snapshot taken when the event was emitted.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// ItemID is empty for batch-level events.
	ItemID string

	Completed int
	InFlight  int
	Remaining int
	Total     int
}

// Snapshot is the live state of the current batch.
type Snapshot struct {
	Total         int
	Completed     int
	InFlight      int
	Remaining     int
	Succeeded     int
	Failed        int
	BytesReceived int64
}

// counters is shared by every task of a batch.
type counters struct {
	total         atomic.Int32
	inFlight      atomic.Int32
	succeeded     atomic.Int32
	failed        atomic.Int32
	bytesReceived atomic.Int64
}

func (c *counters) reset(total int) {
	c.total.Store(int32(total))
	c.inFlight.Store(0)
	c.succeeded.Store(0)
	c.failed.Store(0)
	c.bytesReceived.Store(0)
}

func (c *counters) snapshot() Snapshot {
	s := Snapshot{
		Total:         int(c.total.Load()),
		InFlight:      int(c.inFlight.Load()),
		Succeeded:     int(c.succeeded.Load()),
		Failed:        int(c.failed.Load()),
		BytesReceived: c.bytesReceived.Load(),
	}
	s.Completed = s.Succeeded + s.Failed
	s.Remaining = max(s.Total-s.Completed-s.InFlight, 0)
	return s
}
