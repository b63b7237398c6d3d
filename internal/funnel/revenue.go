package funnel

import (
	"github.com/shopspring/decimal"

	"github.com/mixsight/mixsight/internal/event"
)

// AggregateRevenue sums workspace subscription payments per eligible user.
// Rows are restricted to eligible identities and matching descriptions;
// amounts that fail numeric coercion count as zero but the row is kept.
// Groups are keyed by (distinct_id, email) and emitted in first-seen order,
// with detail strings collected in source row order.
func AggregateRevenue(payments []event.Record, eligible map[string]struct{}) ([]PaymentSummaryRow, decimal.Decimal) {
	type groupKey struct {
		id    string
		email string
	}

	index := make(map[groupKey]int)
	rows := make([]PaymentSummaryRow, 0)

	for _, rec := range payments {
		if _, ok := eligible[rec.DistinctID]; !ok {
			continue
		}
		if !isWorkspacePayment(rec) {
			continue
		}

		amount := event.ParseAmount(rec.Props[event.PropAmount])
		detail := rec.Str(event.PropAmountDesc) + " | $" + amount.String()

		key := groupKey{id: rec.DistinctID, email: rec.Str(event.PropEmail)}
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, PaymentSummaryRow{
				DistinctID:   rec.DistinctID,
				Email:        key.email,
				TotalPayment: decimal.Zero,
			})
		}
		rows[i].TotalPayment = rows[i].TotalPayment.Add(amount)
		rows[i].PaymentDetail = append(rows[i].PaymentDetail, detail)
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.TotalPayment)
	}
	return rows, total
}
