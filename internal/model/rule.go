// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// RecurringRule is a day/time template the backend scheduler materializes
// into concrete recordings. DaysOfWeek uses 0=Monday .. 6=Sunday.
type RecurringRule struct {
	ID         Key     `json:"id"`
	Channel    int64   `json:"channel"`
	Name       string  `json:"name,omitempty"`
	Enabled    bool    `json:"enabled"`
	DaysOfWeek []int   `json:"days_of_week"`
	StartTime  string  `json:"start_time"` // HH:MM[:SS]
	EndTime    string  `json:"end_time"`   // HH:MM[:SS]
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
}

// SeriesRule records every airing of a titled program on a tvg_id.
type SeriesRule struct {
	TVGID Key    `json:"tvg_id"`
	Title string `json:"title,omitempty"`
	Mode  string `json:"mode,omitempty"` // "all" | "new"
}
