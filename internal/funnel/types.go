// Package funnel computes first-touch attribution and funnel stage membership
// over exported event streams. Every stage tolerates empty input; joins and
// aggregations return empty results rather than errors.
package funnel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Membership flag values used in user tables. The flags are derived by the
// classifier, never user-supplied.
const (
	FlagYes = "Yes"
	FlagNo  = "No"
)

// Stage labels shared by both funnel variants.
const (
	StageTotalUsers       = "Total Users"
	StageWorkspacePayment = "Workspace Payment"
)

// workspaceMatch is matched case-insensitively against payment descriptions.
const workspaceMatch = "workspace subscription"

// AttributionRow is the earliest pageview's campaign attribution for one
// user. At most one row exists per distinct id.
type AttributionRow struct {
	DistinctID  string
	Time        *time.Time
	UTMSource   string
	UTMCampaign string
	UTMMedium   string
}

// UserRow is one user who reached the first-pageview stage, carrying the
// resolved attribution fields and, when a payment record exposes one, an
// email address.
type UserRow struct {
	DistinctID   string     `json:"distinct_id"`
	FirstTouch   time.Time  `json:"first_touch"`
	UTMSource    string     `json:"utm_source"`
	UTMCampaign  string     `json:"utm_campaign"`
	UTMMedium    string     `json:"utm_medium"`
	Email        *string    `json:"email,omitempty"`
	AttributedAt *time.Time `json:"attributed_at,omitempty"`
}

// ThreeStepUserRow adds the conditional-path membership flags.
type ThreeStepUserRow struct {
	UserRow
	DidUseCase string `json:"did_use_case"`
	DidPayment string `json:"did_payment"`
}

// TwoStepUserRow adds the unconditional payment flag.
type TwoStepUserRow struct {
	UserRow
	PaymentDone string `json:"payment_done"`
}

// PaymentSummaryRow aggregates one paying user's workspace subscription
// payments. Details preserve source row order.
type PaymentSummaryRow struct {
	DistinctID    string          `json:"distinct_id"`
	Email         string          `json:"email"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	PaymentDetail []string        `json:"payment_detail"`
}

// StageCount is one (label, count) pair in a funnel's ordered stage list.
type StageCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ThreeStepFunnel is the Total Users -> conversion event -> Workspace Payment
// variant. Payment membership is conditioned on conversion.
type ThreeStepFunnel struct {
	Stages       []StageCount        `json:"stage_counts"`
	Users        []ThreeStepUserRow  `json:"user_table"`
	Payments     []PaymentSummaryRow `json:"payment_table"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
}

// TwoStepFunnel is the Total Users -> Workspace Payment variant, computed
// independently from the same filtered user base.
type TwoStepFunnel struct {
	Stages       []StageCount        `json:"stage_counts"`
	Users        []TwoStepUserRow    `json:"user_table"`
	Payments     []PaymentSummaryRow `json:"payment_table"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
}

// Report packages both funnel variants for the presentation layer.
type Report struct {
	ThreeStep ThreeStepFunnel `json:"three_step"`
	TwoStep   TwoStepFunnel   `json:"two_step"`
}

func yesNo(b bool) string {
	if b {
		return FlagYes
	}
	return FlagNo
}
