// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// Lifecycle values of RecordingProperties.Status. An empty status means the
// recording is scheduled.
const (
	StatusRecording   = "recording"
	StatusInterrupted = "interrupted"
	StatusCompleted   = "completed"
)

// RuleTypeRecurring marks occurrences materialized from a RecurringRule.
const RuleTypeRecurring = "recurring"

// Recording is a scheduled, running or finished DVR job created by the
// backend scheduler.
type Recording struct {
	ID               Key                 `json:"id,omitempty"`
	Channel          int64               `json:"channel"`
	StartTime        string              `json:"start_time"`
	EndTime          string              `json:"end_time"`
	CustomProperties RecordingProperties `json:"custom_properties,omitzero"`

	// GroupCount is set on series-grouped upcoming entries only.
	GroupCount int `json:"_group_count,omitempty"`
}

// RecordingProperties is the free-form attribute bag attached to a recording.
type RecordingProperties struct {
	Program         *Program `json:"program,omitempty"`
	Status          string   `json:"status,omitempty"`
	FileURL         string   `json:"file_url,omitempty"`
	OutputFileURL   string   `json:"output_file_url,omitempty"`
	PosterURL       string   `json:"poster_url,omitempty"`
	PosterLogoID    *int64   `json:"poster_logo_id,omitempty"`
	Description     string   `json:"description,omitempty"`
	Rule            *RuleRef `json:"rule,omitempty"`
	Season          Key      `json:"season,omitempty"`
	Episode         Key      `json:"episode,omitempty"`
	OnscreenEpisode Key      `json:"onscreen_episode,omitempty"`
	Rating          Key      `json:"rating,omitempty"`
}

// RuleRef points back at the rule that produced a recording.
type RuleRef struct {
	ID   Key    `json:"id"`
	Type string `json:"type,omitempty"`
}

// ProgramOrZero returns the embedded program snapshot, or the zero Program.
func (r Recording) ProgramOrZero() Program {
	if r.CustomProperties.Program == nil {
		return Program{}
	}
	return *r.CustomProperties.Program
}

// RuleID returns the id of the generating rule, if any.
func (r Recording) RuleID() Key {
	if r.CustomProperties.Rule == nil {
		return ""
	}
	return r.CustomProperties.Rule.ID
}
