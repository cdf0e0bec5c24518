package batch

import "time"

// Item is one unit of work: a source document and the output base name
// it should convert to (naming rule already applied). Items are
// immutable and consumed at most once.
type Item struct {
	Source string
	Base   string
}

type Status string

const (
	StatusConverted Status = "CONVERTED"
	StatusRenamed   Status = "RENAMED"
	StatusFailed    Status = "FAILED"
)

// Outcome records the result of one dequeued item. Items never dequeued
// before a stop produce no Outcome; they surface only in
// Summary.NotProcessed.
type Outcome struct {
	Source    string
	Target    string
	Requested string // path the item asked for before collision suffixing, set when Status is RENAMED
	Status    Status
	Reason    string
}

// Summary accounts for every submitted item:
// Converted + Renamed + Failed + NotProcessed == Total.
type Summary struct {
	Total        int
	Converted    int
	Renamed      int
	Failed       int
	NotProcessed int
	Duration     time.Duration
	Items        []Outcome // completion order, not submission order
}

// Snapshot is a point-in-time view of batch progress, served by the
// health endpoint.
type Snapshot struct {
	Total     int  `json:"total"`
	Queued    int  `json:"queued"`
	Active    int  `json:"active"`
	Converted int  `json:"converted"`
	Renamed   int  `json:"renamed"`
	Failed    int  `json:"failed"`
	Stopping  bool `json:"stopping"`
}
