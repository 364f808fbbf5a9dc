package models

import "time"

// Counter stores the last issued value for a named monotonic sequence.
// Rows are created lazily on first increment and never deleted.
type Counter struct {
	Name           string    `json:"name"`
	Value          int64     `json:"value"`
	Prefix         string    `json:"prefix"`
	ResetFrequency string    `json:"reset_frequency"` // never, daily, monthly, yearly
	LastReset      time.Time `json:"last_reset"`
}

// CounterReset is the admin request to set a sequence to an explicit value.
type CounterReset struct {
	Value int64 `json:"value"`
}

func (c *CounterReset) Validate() string {
	if c.Value < 0 {
		return "value must be non-negative"
	}
	return ""
}
