package funnel

import (
	"time"

	"github.com/mixsight/mixsight/internal/event"
)

// FirstTouch merges one or more pageview streams and returns each user's
// earliest observed timestamp. Streams are scanned in argument order without
// record-level dedup; only the per-user minimum matters. Records with a
// missing or unparseable time are excluded, and a user whose every record
// lacks a valid time does not appear in the result.
func FirstTouch(streams ...[]event.Record) map[string]time.Time {
	first := make(map[string]time.Time)
	for _, stream := range streams {
		for _, rec := range stream {
			if rec.DistinctID == "" || rec.Time == nil {
				continue
			}
			if existing, ok := first[rec.DistinctID]; !ok || rec.Time.Before(existing) {
				first[rec.DistinctID] = *rec.Time
			}
		}
	}
	return first
}
