package model

import "time"

// DownloadOutcome is the result of downloading one item.
type DownloadOutcome struct {
	ItemID   string
	Title    string
	Success  bool
	Attempts int
	Elapsed  time.Duration

	// Dir is the directory the item was written to.
	Dir string

	// Err is the failure reason when Success is false.
	Err error
}

// DownloadSummary aggregates a batch of outcomes.
type DownloadSummary struct {
	Total   int `yaml:"total"`
	Success int `yaml:"success"`
	Failed  int `yaml:"failed"`
}

// Summarize counts successes and failures.
func Summarize(outcomes []DownloadOutcome) DownloadSummary {
	s := DownloadSummary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Success {
			s.Success++
		} else {
			s.Failed++
		}
	}
	return s
}
