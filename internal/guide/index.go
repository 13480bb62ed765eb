// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package guide resolves EPG programs onto channels and computes the pixel
// geometry of the scrolling guide timeline.
package guide

import "github.com/ManuGH/dvrguide/internal/model"

// ChannelIndex maps an external guide key (tvg_id, or channel uuid for
// dummy and unlinked channels) to the ids of every channel using it.
type ChannelIndex map[string][]int64

// BuildChannelIndex computes the guide key of every channel.
//
// Channels without EPG data, or whose EPG data comes from a dummy source,
// are keyed by their own uuid so that programs generated for one channel
// never show up on a sibling sharing the same dummy source. Other channels
// use the EPG record's tvg_id and fall back to the uuid when it is absent.
func BuildChannelIndex(channels []model.Channel, epgData map[int64]model.EPGData, sources map[int64]model.EPGSource) ChannelIndex {
	index := make(ChannelIndex, len(channels))
	for _, ch := range channels {
		key := ChannelKey(ch, epgData, sources)
		if key == "" {
			continue
		}
		index[key] = append(index[key], ch.ID)
	}
	return index
}

// ChannelKey returns the guide key for a single channel, or "" when the
// channel can not be addressed at all.
func ChannelKey(ch model.Channel, epgData map[int64]model.EPGData, sources map[int64]model.EPGSource) string {
	if ch.EPGDataID == nil {
		return ch.UUID
	}
	rec, ok := epgData[*ch.EPGDataID]
	if !ok || rec.EPGSource == nil {
		return ch.UUID
	}
	if src, ok := sources[*rec.EPGSource]; ok && src.IsDummy() {
		return ch.UUID
	}
	if rec.TVGID.IsZero() {
		return ch.UUID
	}
	return rec.TVGID.String()
}

// Lookup returns the channel ids registered under key.
func (idx ChannelIndex) Lookup(key model.Key) []int64 {
	if key.IsZero() {
		return nil
	}
	return idx[key.String()]
}

// ChannelsByID indexes channels by id.
func ChannelsByID(channels []model.Channel) map[int64]model.Channel {
	out := make(map[int64]model.Channel, len(channels))
	for _, ch := range channels {
		out[ch.ID] = ch
	}
	return out
}

// MatchChannel returns the first channel sharing tvgID.
func MatchChannel(idx ChannelIndex, byID map[int64]model.Channel, tvgID model.Key) (model.Channel, bool) {
	ids := idx.Lookup(tvgID)
	if len(ids) == 0 {
		return model.Channel{}, false
	}
	ch, ok := byID[ids[0]]
	return ch, ok
}
