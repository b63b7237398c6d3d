// Package analysis orchestrates one funnel analysis: it resolves which events
// to export, fetches them, and runs the funnel pipeline over the results.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mixsight/mixsight/internal/event"
	"github.com/mixsight/mixsight/internal/funnel"
	"github.com/mixsight/mixsight/internal/logging"
)

// Exporter fetches all records of one event over an inclusive date range.
// Upstream failures surface as an empty collection, never an error.
type Exporter interface {
	Export(ctx context.Context, eventName, from, to string) []event.Record
}

// Service runs analyses against an injected exporter.
type Service struct {
	exporter Exporter
	now      func() time.Time
}

// NewService wires a Service to an exporter.
func NewService(exporter Exporter) *Service {
	return &Service{exporter: exporter, now: time.Now}
}

// Result is a completed analysis with its correlation id.
type Result struct {
	RunID  string        `json:"run_id"`
	Report funnel.Report `json:"report"`
}

// Run executes the full pipeline for one request. Fetches are sequential; a
// single analyst drives one request at a time and correctness does not depend
// on inter-event ordering. Only an invalid request produces an error - empty
// upstream data flows through every stage.
func (s *Service) Run(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := logging.L().With(zap.String("run_id", runID))
	started := s.now()

	exported := make(map[string][]event.Record)
	for _, eventName := range s.eventsToExport(req) {
		dr := req.rangeFor(eventName, s.now())
		records := s.exporter.Export(ctx, eventName, dr.Start, dr.End)
		exported[eventName] = records
		log.Debug("event exported",
			zap.String("event", eventName),
			zap.String("from", dr.Start),
			zap.String("to", dr.End),
			zap.Int("records", len(records)))
	}

	pageviews := make([][]event.Record, 0, 2)
	for _, name := range req.PageviewEvents() {
		pageviews = append(pageviews, exported[name])
	}
	conversions := exported[req.ConversionEvent]

	var payments []event.Record
	if req.IncludePaymentEvent {
		payments = exported[EventPayment]
	}

	firstTouch := funnel.FirstTouch(pageviews...)
	attribution := funnel.ResolveAttribution(pageviews...)
	users := funnel.JoinFirstTouch(firstTouch, attribution)

	users = funnel.Filters{
		Sources:   req.UTMSourceFilter,
		Campaigns: req.UTMCampaignFilter,
		Mediums:   req.UTMMediumFilter,
	}.Apply(users)
	users = funnel.AttachEmails(users, payments)

	report := funnel.BuildReport(users, conversions, payments, req.ConversionEvent)

	log.Info("analysis complete",
		zap.Int("total_users", len(users)),
		zap.Int("three_step_payers", report.ThreeStep.Stages[2].Count),
		zap.Int("two_step_payers", report.TwoStep.Stages[1].Count),
		zap.String("three_step_revenue", report.ThreeStep.TotalRevenue.String()),
		zap.Duration("elapsed", s.now().Sub(started)))

	return &Result{RunID: runID, Report: report}, nil
}

// eventsToExport lists the distinct events this request needs, pageviews
// first.
func (s *Service) eventsToExport(req *Request) []string {
	events := req.PageviewEvents()
	events = append(events, req.ConversionEvent)
	if req.IncludePaymentEvent {
		events = append(events, EventPayment)
	}
	return events
}
