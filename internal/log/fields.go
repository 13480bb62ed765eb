// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldEvent     = "event"
	FieldRuleID    = "rule_id"
	FieldTvgID     = "tvg_id"

	// Guide / DVR counters
	FieldChannels   = "channels"
	FieldPrograms   = "programs"
	FieldUnmatched  = "unmatched"
	FieldMalformed  = "malformed"
	FieldInProgress = "in_progress"
	FieldUpcoming   = "upcoming"
	FieldCompleted  = "completed"

	// Time fields
	FieldWindowFrom = "window_from"
	FieldWindowTo   = "window_to"
	FieldTimeZone   = "time_zone"

	// Path fields
	FieldPath = "path"
)
