package models

import "time"

// LoginEvent records the outcome of one authentication callback.
type LoginEvent struct {
	ID        string
	Timestamp time.Time
	Provider  string
	Outcome   string
	Reason    string
	Email     string
	IPAddress string
	UserAgent string
}

// LoginEventCount aggregates login events by provider and outcome.
type LoginEventCount struct {
	Provider string `json:"provider"`
	Outcome  string `json:"outcome"`
	Count    int64  `json:"count"`
}
