package funnel

import (
	"sort"
	"strings"
	"time"

	"github.com/mixsight/mixsight/internal/event"
)

// ResolveAttribution selects, per user, the UTM fields of their earliest
// pageview. Streams are concatenated in argument order and stable-sorted by
// time ascending; records without a parseable time sort after all timed
// records, and ties keep concatenation order. The first row per distinct id
// after sorting wins.
func ResolveAttribution(streams ...[]event.Record) []AttributionRow {
	var rows []AttributionRow
	for _, stream := range streams {
		for _, rec := range stream {
			if rec.DistinctID == "" {
				continue
			}
			rows = append(rows, AttributionRow{
				DistinctID:  rec.DistinctID,
				Time:        rec.Time,
				UTMSource:   NormalizeUTM(rec.Str(event.PropUTMSource)),
				UTMCampaign: NormalizeUTM(rec.Str(event.PropUTMCampaign)),
				UTMMedium:   NormalizeUTM(rec.Str(event.PropUTMMedium)),
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := rows[i].Time, rows[j].Time
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		return ti.Before(*tj)
	})

	seen := make(map[string]struct{}, len(rows))
	deduped := rows[:0]
	for _, row := range rows {
		if _, dup := seen[row.DistinctID]; dup {
			continue
		}
		seen[row.DistinctID] = struct{}{}
		deduped = append(deduped, row)
	}
	return deduped
}

// JoinFirstTouch left-joins attribution rows onto the first-touch identity
// set. Only users present in firstTouch survive; users without a matching
// attribution row keep empty UTM fields. Output is ordered by distinct id so
// downstream tables are deterministic.
func JoinFirstTouch(firstTouch map[string]time.Time, rows []AttributionRow) []UserRow {
	byID := make(map[string]AttributionRow, len(rows))
	for _, row := range rows {
		byID[row.DistinctID] = row
	}

	ids := make([]string, 0, len(firstTouch))
	for id := range firstTouch {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	users := make([]UserRow, 0, len(ids))
	for _, id := range ids {
		user := UserRow{
			DistinctID: id,
			FirstTouch: firstTouch[id],
		}
		if attr, ok := byID[id]; ok {
			user.UTMSource = attr.UTMSource
			user.UTMCampaign = attr.UTMCampaign
			user.UTMMedium = attr.UTMMedium
			user.AttributedAt = attr.Time
		}
		users = append(users, user)
	}
	return users
}

// NormalizeUTM trims whitespace and canonicalizes the textual placeholders
// the export API emits for absent values.
func NormalizeUTM(s string) string {
	s = strings.TrimSpace(s)
	if s == "nan" || s == "None" {
		return ""
	}
	return s
}
