package funnel

import (
	"strings"

	"github.com/mixsight/mixsight/internal/event"
)

// Filters restricts the user base by campaign attribution. An empty list on a
// dimension imposes no constraint; configured dimensions apply as a
// conjunction.
type Filters struct {
	Sources   []string
	Campaigns []string
	Mediums   []string
}

// Apply returns the users whose normalized UTM fields pass every configured
// dimension.
func (f Filters) Apply(users []UserRow) []UserRow {
	out := make([]UserRow, 0, len(users))
	for _, user := range users {
		if !member(f.Sources, user.UTMSource) {
			continue
		}
		if !member(f.Campaigns, user.UTMCampaign) {
			continue
		}
		if !member(f.Mediums, user.UTMMedium) {
			continue
		}
		out = append(out, user)
	}
	return out
}

func member(filter []string, value string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, v := range filter {
		if v == value {
			return true
		}
	}
	return false
}

// AttachEmails left-joins the first non-empty $email per user from the
// payment stream. Users without a payment record keep a nil email.
func AttachEmails(users []UserRow, payments []event.Record) []UserRow {
	emails := make(map[string]string)
	for _, rec := range payments {
		if rec.DistinctID == "" {
			continue
		}
		if _, ok := emails[rec.DistinctID]; ok {
			continue
		}
		if email := rec.Str(event.PropEmail); email != "" {
			emails[rec.DistinctID] = email
		}
	}

	out := make([]UserRow, len(users))
	copy(out, users)
	for i := range out {
		if email, ok := emails[out[i].DistinctID]; ok {
			e := email
			out[i].Email = &e
		}
	}
	return out
}

// BuildThreeStep computes the conditional funnel: conversion membership
// first, then workspace payment restricted to converted users. A user can
// never show DidPayment without DidUseCase.
func BuildThreeStep(users []UserRow, conversions, payments []event.Record, conversionLabel string) ThreeStepFunnel {
	converted := identitySet(conversions)

	convertedUsers := make(map[string]struct{}, len(users))
	for _, user := range users {
		if _, ok := converted[user.DistinctID]; ok {
			convertedUsers[user.DistinctID] = struct{}{}
		}
	}

	payers := workspacePayerIDs(payments, convertedUsers)

	rows := make([]ThreeStepUserRow, 0, len(users))
	useCaseCount, paymentCount := 0, 0
	for _, user := range users {
		_, didUseCase := convertedUsers[user.DistinctID]
		_, didPayment := payers[user.DistinctID]
		if didUseCase {
			useCaseCount++
		}
		if didPayment {
			paymentCount++
		}
		rows = append(rows, ThreeStepUserRow{
			UserRow:    user,
			DidUseCase: yesNo(didUseCase),
			DidPayment: yesNo(didPayment),
		})
	}

	summary, total := AggregateRevenue(payments, payers)

	return ThreeStepFunnel{
		Stages: []StageCount{
			{Label: StageTotalUsers, Count: len(users)},
			{Label: conversionLabel, Count: useCaseCount},
			{Label: StageWorkspacePayment, Count: paymentCount},
		},
		Users:        rows,
		Payments:     summary,
		TotalRevenue: total,
	}
}

// BuildTwoStep computes the unconditional funnel from the same filtered user
// base, without requiring prior conversion. It never shares stage-specific
// state with the three-step variant.
func BuildTwoStep(users []UserRow, payments []event.Record) TwoStepFunnel {
	base := make(map[string]struct{}, len(users))
	for _, user := range users {
		base[user.DistinctID] = struct{}{}
	}

	payers := workspacePayerIDs(payments, base)

	rows := make([]TwoStepUserRow, 0, len(users))
	paymentCount := 0
	for _, user := range users {
		_, done := payers[user.DistinctID]
		if done {
			paymentCount++
		}
		rows = append(rows, TwoStepUserRow{
			UserRow:     user,
			PaymentDone: yesNo(done),
		})
	}

	summary, total := AggregateRevenue(payments, payers)

	return TwoStepFunnel{
		Stages: []StageCount{
			{Label: StageTotalUsers, Count: len(users)},
			{Label: StageWorkspacePayment, Count: paymentCount},
		},
		Users:        rows,
		Payments:     summary,
		TotalRevenue: total,
	}
}

// workspacePayerIDs returns the eligible users that have at least one payment
// whose description matches the workspace subscription category.
func workspacePayerIDs(payments []event.Record, eligible map[string]struct{}) map[string]struct{} {
	payers := make(map[string]struct{})
	for _, rec := range payments {
		if _, ok := eligible[rec.DistinctID]; !ok {
			continue
		}
		if isWorkspacePayment(rec) {
			payers[rec.DistinctID] = struct{}{}
		}
	}
	return payers
}

func isWorkspacePayment(rec event.Record) bool {
	desc := rec.Str(event.PropAmountDesc)
	return strings.Contains(strings.ToLower(desc), workspaceMatch)
}

func identitySet(records []event.Record) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.DistinctID != "" {
			set[rec.DistinctID] = struct{}{}
		}
	}
	return set
}
