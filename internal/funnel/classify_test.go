package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixsight/mixsight/internal/event"
)

func user(id, source, campaign, medium string) UserRow {
	return UserRow{
		DistinctID:  id,
		FirstTouch:  *ts(1),
		UTMSource:   source,
		UTMCampaign: campaign,
		UTMMedium:   medium,
	}
}

func payment(id, desc string, amount any, email string) event.Record {
	props := map[string]any{
		"Amount Description": desc,
		"Amount":             amount,
	}
	if email != "" {
		props["$email"] = email
	}
	return event.Record{DistinctID: id, Time: ts(4), Props: props}
}

func conversion(id string) event.Record {
	return event.Record{DistinctID: id, Time: ts(3), Props: map[string]any{}}
}

func TestFiltersConjunction(t *testing.T) {
	users := []UserRow{
		user("u1", "ads", "launch", "cpc"),
		user("u2", "ads", "brand", "cpc"),
		user("u3", "seo", "launch", "cpc"),
	}

	filtered := Filters{
		Sources:   []string{"ads"},
		Campaigns: []string{"launch"},
	}.Apply(users)

	require.Len(t, filtered, 1)
	assert.Equal(t, "u1", filtered[0].DistinctID)
}

func TestFiltersEmptyListIsNoConstraint(t *testing.T) {
	users := []UserRow{
		user("u1", "ads", "launch", "cpc"),
		user("u2", "seo", "", ""),
	}

	unconstrained := Filters{}.Apply(users)
	assert.Equal(t, users, unconstrained)

	// Adding an empty filter list never changes the result set.
	withEmpty := Filters{Sources: []string{"ads"}, Mediums: nil}.Apply(users)
	withoutEmpty := Filters{Sources: []string{"ads"}}.Apply(users)
	assert.Equal(t, withoutEmpty, withEmpty)
}

func TestFiltersEmptyInput(t *testing.T) {
	assert.Empty(t, Filters{Sources: []string{"ads"}}.Apply(nil))
}

func TestAttachEmailsFirstNonEmptyWins(t *testing.T) {
	users := []UserRow{user("u1", "", "", ""), user("u2", "", "", "")}
	payments := []event.Record{
		payment("u1", "Workspace Subscription", 10, ""),
		payment("u1", "Workspace Subscription", 10, "first@example.com"),
		payment("u1", "Workspace Subscription", 10, "second@example.com"),
	}

	out := AttachEmails(users, payments)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].Email)
	assert.Equal(t, "first@example.com", *out[0].Email)
	assert.Nil(t, out[1].Email, "user without payment record keeps nil email")

	// Input slice is not mutated.
	assert.Nil(t, users[0].Email)
}

func TestBuildThreeStepConditionalPayment(t *testing.T) {
	users := []UserRow{
		user("converted-payer", "ads", "", ""),
		user("unconverted-payer", "ads", "", ""),
		user("converted-only", "ads", "", ""),
	}
	conversions := []event.Record{conversion("converted-payer"), conversion("converted-only")}
	payments := []event.Record{
		payment("converted-payer", "Workspace Subscription - Pro", 50, "p@example.com"),
		payment("unconverted-payer", "Workspace Subscription - Pro", 99, "q@example.com"),
	}

	result := BuildThreeStep(users, conversions, payments, "Entered Use Case")

	require.Len(t, result.Users, 3)
	byID := map[string]ThreeStepUserRow{}
	for _, row := range result.Users {
		byID[row.DistinctID] = row
	}

	assert.Equal(t, FlagYes, byID["converted-payer"].DidUseCase)
	assert.Equal(t, FlagYes, byID["converted-payer"].DidPayment)
	assert.Equal(t, FlagNo, byID["unconverted-payer"].DidUseCase)
	assert.Equal(t, FlagNo, byID["unconverted-payer"].DidPayment, "payment counts only after conversion")
	assert.Equal(t, FlagYes, byID["converted-only"].DidUseCase)
	assert.Equal(t, FlagNo, byID["converted-only"].DidPayment)

	// Invariant: DidPayment=Yes implies DidUseCase=Yes.
	for _, row := range result.Users {
		if row.DidPayment == FlagYes {
			assert.Equal(t, FlagYes, row.DidUseCase)
		}
	}

	require.Len(t, result.Stages, 3)
	assert.Equal(t, StageCount{Label: StageTotalUsers, Count: 3}, result.Stages[0])
	assert.Equal(t, StageCount{Label: "Entered Use Case", Count: 2}, result.Stages[1])
	assert.Equal(t, StageCount{Label: StageWorkspacePayment, Count: 1}, result.Stages[2])

	require.Len(t, result.Payments, 1)
	assert.Equal(t, "converted-payer", result.Payments[0].DistinctID)
	assert.Equal(t, "50", result.TotalRevenue.String())
}

func TestBuildThreeStepIgnoresNonWorkspacePayments(t *testing.T) {
	users := []UserRow{user("u1", "", "", "")}
	conversions := []event.Record{conversion("u1")}
	payments := []event.Record{payment("u1", "Consulting Fee", 500, "")}

	result := BuildThreeStep(users, conversions, payments, "Entered Use Case")
	assert.Equal(t, FlagNo, result.Users[0].DidPayment)
	assert.Equal(t, 0, result.Stages[2].Count)
	assert.True(t, result.TotalRevenue.IsZero())
}

func TestBuildThreeStepDescriptionMatchIsCaseInsensitive(t *testing.T) {
	users := []UserRow{user("u1", "", "", "")}
	conversions := []event.Record{conversion("u1")}
	payments := []event.Record{payment("u1", "WORKSPACE SUBSCRIPTION (annual)", 120, "")}

	result := BuildThreeStep(users, conversions, payments, "Entered Use Case")
	assert.Equal(t, FlagYes, result.Users[0].DidPayment)
}

func TestBuildTwoStepIndependentOfConversion(t *testing.T) {
	users := []UserRow{
		user("payer-no-conversion", "ads", "", ""),
		user("non-payer", "ads", "", ""),
	}
	payments := []event.Record{
		payment("payer-no-conversion", "Workspace Subscription", 30, ""),
	}

	result := BuildTwoStep(users, payments)

	require.Len(t, result.Users, 2)
	assert.Equal(t, FlagYes, result.Users[0].PaymentDone)
	assert.Equal(t, FlagNo, result.Users[1].PaymentDone)

	require.Len(t, result.Stages, 2)
	assert.Equal(t, StageCount{Label: StageTotalUsers, Count: 2}, result.Stages[0])
	assert.Equal(t, StageCount{Label: StageWorkspacePayment, Count: 1}, result.Stages[1])
	assert.Equal(t, "30", result.TotalRevenue.String())
}

func TestBuildReportVariantsDoNotShareState(t *testing.T) {
	users := []UserRow{user("payer", "ads", "", "")}
	payments := []event.Record{payment("payer", "Workspace Subscription", 30, "")}

	// No conversion events: the 3-step funnel must show zero payments while
	// the 2-step funnel still counts the payer.
	report := BuildReport(users, nil, payments, "Entered Use Case")

	assert.Equal(t, 0, report.ThreeStep.Stages[2].Count)
	assert.True(t, report.ThreeStep.TotalRevenue.IsZero())
	assert.Equal(t, 1, report.TwoStep.Stages[1].Count)
	assert.Equal(t, "30", report.TwoStep.TotalRevenue.String())
}

func TestBuildFunnelsEmptyInputs(t *testing.T) {
	three := BuildThreeStep(nil, nil, nil, "Entered Use Case")
	assert.Equal(t, 0, three.Stages[0].Count)
	assert.Empty(t, three.Users)
	assert.Empty(t, three.Payments)
	assert.True(t, three.TotalRevenue.IsZero())

	two := BuildTwoStep(nil, nil)
	assert.Equal(t, 0, two.Stages[0].Count)
	assert.Empty(t, two.Users)
	assert.True(t, two.TotalRevenue.IsZero())
}
