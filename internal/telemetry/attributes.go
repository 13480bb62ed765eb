// SPDX-License-Identifier: MIT

package telemetry

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by read-layer spans.
const (
	GuideWindowStartKey = "guide.window.start"
	GuideWindowEndKey   = "guide.window.end"
	GuideChannelsKey    = "guide.channels"
	GuideProgramsKey    = "guide.programs"
	GuideUnmatchedKey   = "guide.unmatched"
	GuideMalformedKey   = "guide.malformed"

	DvrInProgressKey = "dvr.in_progress"
	DvrUpcomingKey   = "dvr.upcoming"
	DvrCompletedKey  = "dvr.completed"
	DvrRuleIDKey     = "dvr.rule_id"
	DvrSeriesKey     = "dvr.series"
	DvrEpisodesKey   = "dvr.episodes"

	ViewerTimeZoneKey = "viewer.time_zone"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// GuideAttributes describes one computed guide.
func GuideAttributes(start, end time.Time, channels, programs, unmatched, malformed int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(GuideWindowStartKey, start.Format(time.RFC3339)),
		attribute.String(GuideWindowEndKey, end.Format(time.RFC3339)),
		attribute.Int(GuideChannelsKey, channels),
		attribute.Int(GuideProgramsKey, programs),
		attribute.Int(GuideUnmatchedKey, unmatched),
		attribute.Int(GuideMalformedKey, malformed),
	}
}

// DvrAttributes describes one classification.
func DvrAttributes(inProgress, upcoming, completed int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(DvrInProgressKey, inProgress),
		attribute.Int(DvrUpcomingKey, upcoming),
		attribute.Int(DvrCompletedKey, completed),
	}
}

// SeriesAttributes describes a series episode lookup. Empty values are omitted.
func SeriesAttributes(tvgID, title string, episodes int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if tvgID != "" || title != "" {
		attrs = append(attrs, attribute.String(DvrSeriesKey, tvgID+"|"+title))
	}
	return append(attrs, attribute.Int(DvrEpisodesKey, episodes))
}

// ErrorAttributes marks a span as failed with a coarse error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
