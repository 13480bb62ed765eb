// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package guide

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ManuGH/dvrguide/internal/model"
)

// SortChannels orders channels by channel number; channels without a
// number (or numbered 0) go last. Equal numbers keep input order.
func SortChannels(channels []model.Channel) []model.Channel {
	out := slices.Clone(channels)
	slices.SortStableFunc(out, func(a, b model.Channel) int {
		an, aok := channelNumber(a)
		bn, bok := channelNumber(b)
		switch {
		case aok && bok:
			return cmp.Compare(an, bn)
		case aok:
			return -1
		case bok:
			return 1
		}
		return 0
	})
	return out
}

func channelNumber(ch model.Channel) (float64, bool) {
	if ch.ChannelNumber == nil || *ch.ChannelNumber == 0 {
		return 0, false
	}
	return *ch.ChannelNumber, true
}

// ChannelFilter narrows the guide rows.
type ChannelFilter struct {
	Query   string
	GroupID *int64
	// ProfileChannels restricts rows to the enabled channels of a profile.
	// nil means no profile filter.
	ProfileChannels map[int64]bool
}

// FilterChannels applies f, preserving order.
func FilterChannels(channels []model.Channel, f ChannelFilter) []model.Channel {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.Channel, 0, len(channels))
	for _, ch := range channels {
		if q != "" && !strings.Contains(strings.ToLower(ch.Name), q) {
			continue
		}
		if f.GroupID != nil && (ch.ChannelGroupID == nil || *ch.ChannelGroupID != *f.GroupID) {
			continue
		}
		if f.ProfileChannels != nil && !f.ProfileChannels[ch.ID] {
			continue
		}
		out = append(out, ch)
	}
	return out
}
