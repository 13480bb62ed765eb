// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// SourceTypeDummy marks a synthetic EPG source that does not provide
// distinct per-channel listings.
const SourceTypeDummy = "dummy"

// Channel is a catalog channel. Owned by the catalog service.
type Channel struct {
	ID             int64    `json:"id"`
	UUID           string   `json:"uuid"`
	Name           string   `json:"name"`
	ChannelNumber  *float64 `json:"channel_number,omitempty"`
	LogoID         *int64   `json:"logo_id,omitempty"`
	EPGDataID      *int64   `json:"epg_data_id,omitempty"`
	ChannelGroupID *int64   `json:"channel_group_id,omitempty"`
}

// EPGData links a channel to an external guide identifier.
type EPGData struct {
	ID        int64  `json:"id"`
	TVGID     Key    `json:"tvg_id"`
	Name      string `json:"name,omitempty"`
	EPGSource *int64 `json:"epg_source,omitempty"`
}

// EPGSource describes where guide data comes from.
type EPGSource struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	SourceType string `json:"source_type"`
}

// IsDummy reports whether programs from this source must be addressed by
// channel uuid instead of tvg_id.
func (s EPGSource) IsDummy() bool {
	return s.SourceType == SourceTypeDummy
}

// Logo is a cached channel logo.
type Logo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	CacheURL string `json:"cache_url,omitempty"`
}
