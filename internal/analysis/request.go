package analysis

import (
	"errors"
	"fmt"
	"time"
)

// Event names as they exist in the Mixpanel project.
const (
	EventPageviewMPWeb  = "$mp_web_page_view"
	EventPageviewWebApp = "Web App Page View"
	EventPayment        = "New Payment Made"

	ConversionEnteredUseCase = "Entered Use Case"
	ConversionNewUserSignUp  = "New User Sign Up"
)

// Pageview stream selection.
const (
	PageviewMPWeb  = "mp_web"
	PageviewWebApp = "web_app"
	PageviewBoth   = "both"
)

const dateLayout = "2006-01-02"

// defaultRangeDays is the trailing window applied to events without an
// explicit date range.
const defaultRangeDays = 7

var (
	ErrInvalidPageviewChoice  = errors.New("invalid pageview_choice")
	ErrInvalidConversionEvent = errors.New("invalid conversion_event")
)

// DateRange is an inclusive export window.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r DateRange) validate() error {
	start, err := time.Parse(dateLayout, r.Start)
	if err != nil {
		return fmt.Errorf("invalid start date %q", r.Start)
	}
	end, err := time.Parse(dateLayout, r.End)
	if err != nil {
		return fmt.Errorf("invalid end date %q", r.End)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s before start date %s", r.End, r.Start)
	}
	return nil
}

// Request is one validated analysis configuration, as produced by the form
// layer.
type Request struct {
	PageviewChoice      string               `json:"pageview_choice"`
	ConversionEvent     string               `json:"conversion_event"`
	IncludePaymentEvent bool                 `json:"include_payment_event"`
	UTMSourceFilter     []string             `json:"utm_source_filter"`
	UTMCampaignFilter   []string             `json:"utm_campaign_filter"`
	UTMMediumFilter     []string             `json:"utm_medium_filter"`
	DateRanges          map[string]DateRange `json:"date_ranges"`
}

// Validate checks the enum fields and any supplied date ranges.
func (r *Request) Validate() error {
	switch r.PageviewChoice {
	case PageviewMPWeb, PageviewWebApp, PageviewBoth:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPageviewChoice, r.PageviewChoice)
	}

	switch r.ConversionEvent {
	case ConversionEnteredUseCase, ConversionNewUserSignUp:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidConversionEvent, r.ConversionEvent)
	}

	for eventName, dr := range r.DateRanges {
		if err := dr.validate(); err != nil {
			return fmt.Errorf("date range for %q: %w", eventName, err)
		}
	}
	return nil
}

// PageviewEvents returns the pageview event names to export, in stream order.
func (r *Request) PageviewEvents() []string {
	switch r.PageviewChoice {
	case PageviewMPWeb:
		return []string{EventPageviewMPWeb}
	case PageviewWebApp:
		return []string{EventPageviewWebApp}
	default:
		return []string{EventPageviewMPWeb, EventPageviewWebApp}
	}
}

// rangeFor returns the configured range for an event, defaulting to the
// trailing week when none was supplied.
func (r *Request) rangeFor(eventName string, now time.Time) DateRange {
	if dr, ok := r.DateRanges[eventName]; ok {
		return dr
	}
	end := now.UTC()
	start := end.AddDate(0, 0, -defaultRangeDays)
	return DateRange{
		Start: start.Format(dateLayout),
		End:   end.Format(dateLayout),
	}
}
