// Package funnel turns raw onboarding events into journey summaries, funnel
// conversion rates, weekly cohort retention and channel rollups.
//
// Every exported function is a pure reduction over its input slice. Inputs
// are never modified and outputs are fresh values owned by the caller.
package funnel

import "strings"

// Event types with special meaning to the engine.
const (
	EventLandingPageView    = "landing_page_view"
	EventSignupPageView     = "signup_page_view"
	EventEmailVerification  = "email_verification"
	EventProfileSetup       = "profile_setup"
	EventFirstProductView   = "first_product_view"
	EventAddToCart          = "add_to_cart"
	EventCheckoutStart      = "checkout_start"
	EventPaymentInfoEntered = "payment_info_entered"
	EventPurchaseCompleted  = "purchase_completed"
	EventAppDownload        = "app_download"
	EventFirstLoginApp      = "first_login_app"
)

// stepTable is the ordered list of known funnel steps. A type's ordinal is
// its index plus one.
var stepTable = [...]string{
	EventLandingPageView,
	EventSignupPageView,
	EventEmailVerification,
	EventProfileSetup,
	EventFirstProductView,
	EventAddToCart,
	EventCheckoutStart,
	EventPaymentInfoEntered,
	EventPurchaseCompleted,
	EventAppDownload,
	EventFirstLoginApp,
}

// primaryFunnelLength is the number of leading stepTable entries that form
// the primary web funnel. App steps are tracked but not part of it.
const primaryFunnelLength = 9

var stepOrdinals = func() map[string]int {
	m := make(map[string]int, len(stepTable))
	for i, eventType := range stepTable {
		m[eventType] = i + 1
	}
	return m
}()

// StepOf returns the funnel ordinal (1..11) for eventType.
func StepOf(eventType string) (int, bool) {
	step, ok := stepOrdinals[eventType]
	return step, ok
}

// PrimaryFunnel returns the nine primary funnel event types in order.
func PrimaryFunnel() []string {
	steps := make([]string, primaryFunnelLength)
	copy(steps, stepTable[:primaryFunnelLength])
	return steps
}

// StepLabel renders an event type for display, e.g. "Add To Cart".
func StepLabel(eventType string) string {
	words := strings.Split(eventType, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
