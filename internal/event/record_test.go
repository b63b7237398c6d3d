package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *time.Time
	}{
		{
			name:  "unix seconds as float",
			value: float64(1704067200),
			want:  timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "unix seconds as json number",
			value: json.Number("1704067200"),
			want:  timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "rfc3339 string",
			value: "2024-01-03T12:00:00Z",
			want:  timePtr(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)),
		},
		{
			name:  "date only string",
			value: "2024-01-03",
			want:  timePtr(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "garbage string",
			value: "not-a-time",
			want:  nil,
		},
		{
			name:  "nil",
			value: nil,
			want:  nil,
		},
		{
			name:  "zero seconds treated as missing",
			value: float64(0),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTime(tt.value)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %s got %s", tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	assert.True(t, decimal.NewFromFloat(49.99).Equal(ParseAmount(49.99)))
	assert.True(t, decimal.NewFromInt(50).Equal(ParseAmount(json.Number("50"))))
	assert.True(t, decimal.NewFromFloat(12.5).Equal(ParseAmount("12.5")))

	// Non-numeric values default to zero, never an error.
	assert.True(t, decimal.Zero.Equal(ParseAmount("free")))
	assert.True(t, decimal.Zero.Equal(ParseAmount(nil)))
	assert.True(t, decimal.Zero.Equal(ParseAmount([]string{"x"})))
}

func TestFromFlat(t *testing.T) {
	flat := map[string]any{
		"distinct_id": "user-1",
		"time":        json.Number("1704067200"),
		"$insert_id":  "abc-123",
		"utm_source":  "ads",
	}

	rec := FromFlat(flat)
	assert.Equal(t, "user-1", rec.DistinctID)
	require.NotNil(t, rec.Time)
	assert.Equal(t, 2024, rec.Time.Year())
	assert.Equal(t, "abc-123", rec.InsertID)
	assert.Equal(t, "ads", rec.Str("utm_source"))
}

func TestFromFlatMissingFields(t *testing.T) {
	rec := FromFlat(map[string]any{"event": "Page View"})
	assert.Equal(t, "", rec.DistinctID)
	assert.Nil(t, rec.Time)
	assert.Equal(t, "", rec.InsertID)
	assert.Equal(t, "", rec.Str("utm_source"))
	assert.False(t, rec.Has("utm_source"))
}

func TestStrRendersNonStrings(t *testing.T) {
	rec := Record{Props: map[string]any{
		"amount": json.Number("42"),
		"flag":   true,
		"empty":  nil,
	}}
	assert.Equal(t, "42", rec.Str("amount"))
	assert.Equal(t, "true", rec.Str("flag"))
	assert.Equal(t, "", rec.Str("empty"))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
