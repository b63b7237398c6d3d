package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Property keys used across the pipeline. Mixpanel prefixes its reserved
// properties with "$".
const (
	PropInsertID    = "$insert_id"
	PropEmail       = "$email"
	PropUTMSource   = "utm_source"
	PropUTMCampaign = "utm_campaign"
	PropUTMMedium   = "utm_medium"
	PropAmount      = "Amount"
	PropAmountDesc  = "Amount Description"
)

// Record is one exported analytics event with its properties flattened onto
// the top level. Records are immutable once built and live only for the
// duration of a single analysis.
type Record struct {
	DistinctID string
	Time       *time.Time // nil when absent or unparseable
	InsertID   string
	Props      map[string]any
}

// Str returns the property value rendered as a string, or "" when the
// property is absent or nil.
func (r Record) Str(key string) string {
	v, ok := r.Props[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Has reports whether the property is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r.Props[key]
	return ok && v != nil
}

// ParseTime interprets a raw property value as an event timestamp. Mixpanel
// exports unix seconds; string timestamps are accepted as a fallback. A nil
// return marks the time as missing, and call sites exclude such records from
// time-based ordering rather than defaulting.
func ParseTime(v any) *time.Time {
	switch t := v.(type) {
	case float64:
		return unixTime(int64(t))
	case int64:
		return unixTime(t)
	case int:
		return unixTime(int64(t))
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return unixTime(n)
		}
		if f, err := t.Float64(); err == nil {
			return unixTime(int64(f))
		}
		return nil
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed
			}
		}
		return nil
	default:
		return nil
	}
}

// ParseAmount coerces a raw property value to a decimal amount. Unlike
// timestamps, a value that cannot be parsed becomes zero and the record is
// kept; revenue aggregation never drops a row over a malformed amount.
func ParseAmount(v any) decimal.Decimal {
	switch a := v.(type) {
	case float64:
		return decimal.NewFromFloat(a)
	case int64:
		return decimal.NewFromInt(a)
	case int:
		return decimal.NewFromInt(int64(a))
	case json.Number:
		if d, err := decimal.NewFromString(a.String()); err == nil {
			return d
		}
		return decimal.Zero
	case string:
		if d, err := decimal.NewFromString(a); err == nil {
			return d
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// FromFlat builds a Record from an already-flattened property map, pulling
// the identity, time, and insert id fields into their typed slots.
func FromFlat(flat map[string]any) Record {
	rec := Record{Props: flat}
	if id, ok := flat["distinct_id"].(string); ok {
		rec.DistinctID = id
	} else if v, ok := flat["distinct_id"]; ok && v != nil {
		rec.DistinctID = fmt.Sprintf("%v", v)
	}
	if v, ok := flat["time"]; ok {
		rec.Time = ParseTime(v)
	}
	if v, ok := flat[PropInsertID]; ok && v != nil {
		switch id := v.(type) {
		case string:
			rec.InsertID = id
		case json.Number:
			rec.InsertID = id.String()
		case float64:
			rec.InsertID = strconv.FormatFloat(id, 'f', -1, 64)
		}
	}
	return rec
}
