// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// Program is a single EPG listing. Timestamps are kept as received so that
// malformed values can be skipped instead of failing a whole payload.
type Program struct {
	ID               Key               `json:"id,omitempty"`
	TVGID            Key               `json:"tvg_id"`
	Title            string            `json:"title"`
	SubTitle         string            `json:"sub_title,omitempty"`
	Description      string            `json:"description,omitempty"`
	StartTime        string            `json:"start_time"`
	EndTime          string            `json:"end_time"`
	CustomProperties ProgramProperties `json:"custom_properties,omitzero"`
}

// ProgramProperties carries optional series metadata.
type ProgramProperties struct {
	Season          Key `json:"season,omitempty"`
	Episode         Key `json:"episode,omitempty"`
	OnscreenEpisode Key `json:"onscreen_episode,omitempty"`
	Rating          Key `json:"rating,omitempty"`
}
