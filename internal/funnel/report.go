package funnel

import "github.com/mixsight/mixsight/internal/event"

// BuildReport assembles both funnel variants from the same filtered user
// base. Each variant is computed independently; no stage-specific state is
// shared between them.
func BuildReport(users []UserRow, conversions, payments []event.Record, conversionLabel string) Report {
	return Report{
		ThreeStep: BuildThreeStep(users, conversions, payments, conversionLabel),
		TwoStep:   BuildTwoStep(users, payments),
	}
}
