package funnel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelscope/api/models"
)

func metricFor(t *testing.T, metrics []models.FunnelStepMetric, eventType string) models.FunnelStepMetric {
	t.Helper()
	for _, m := range metrics {
		if m.EventType == eventType {
			return m
		}
	}
	t.Fatalf("no metric for %s", eventType)
	return models.FunnelStepMetric{}
}

func threeUserScenario() []models.Event {
	return []models.Event{
		ev("U1", EventLandingPageView, t0),
		ev("U1", EventSignupPageView, t0.Add(time.Hour)),
		ev("U1", EventPurchaseCompleted, t0.Add(2*time.Hour)),
		ev("U2", EventLandingPageView, t0),
		ev("U3", EventLandingPageView, t0),
		ev("U3", EventSignupPageView, t0.Add(time.Hour)),
	}
}

func TestComputeFunnelThreeUserScenario(t *testing.T) {
	events, _ := Normalize(threeUserScenario())
	metrics := ComputeFunnel(events)
	require.Len(t, metrics, 9)

	landing := metrics[0]
	assert.Equal(t, 1, landing.Step)
	assert.Equal(t, "Landing Page View", landing.EventLabel)
	assert.Equal(t, 3, landing.UsersAtStep)
	assert.Equal(t, 100.0, landing.StepConversionRate)
	assert.Equal(t, 100.0, landing.OverallConversionRate)
	assert.Equal(t, 0.0, landing.DropOffRate)

	signup := metricFor(t, metrics, EventSignupPageView)
	assert.Equal(t, 2, signup.UsersAtStep)
	assert.InDelta(t, 66.67, signup.StepConversionRate, 0.01)
	assert.InDelta(t, 66.67, signup.OverallConversionRate, 0.01)
	assert.InDelta(t, 33.33, signup.DropOffRate, 0.01)

	// Steps between signup and purchase are empty, so the step rate into
	// purchase is zero-guarded while the overall rate still reflects U1.
	verification := metricFor(t, metrics, EventEmailVerification)
	assert.Equal(t, 0, verification.UsersAtStep)
	assert.Equal(t, 0.0, verification.StepConversionRate)
	assert.Equal(t, 100.0, verification.DropOffRate)

	purchase := metricFor(t, metrics, EventPurchaseCompleted)
	assert.Equal(t, 9, purchase.Step)
	assert.Equal(t, 1, purchase.UsersAtStep)
	assert.InDelta(t, 33.33, purchase.OverallConversionRate, 0.01)
	assert.Equal(t, 0.0, purchase.StepConversionRate)

	journeys := SummarizeJourneys(events)
	require.Len(t, journeys, 3)
	assert.True(t, journeys[0].ConvertedToPurchase)
	assert.False(t, journeys[1].ConvertedToPurchase)
	assert.False(t, journeys[2].ConvertedToPurchase)
}

func TestComputeFunnelStepRateAgainstPreviousStep(t *testing.T) {
	// Payment and purchase are adjacent steps, so the purchase step rate is
	// relative to payment.
	events, _ := Normalize([]models.Event{
		ev("U1", EventPaymentInfoEntered, t0),
		ev("U1", EventPurchaseCompleted, t0.Add(time.Hour)),
		ev("U2", EventPaymentInfoEntered, t0),
		ev("U1", EventLandingPageView, t0),
		ev("U2", EventLandingPageView, t0),
		ev("U3", EventLandingPageView, t0),
	})

	purchase := metricFor(t, ComputeFunnel(events), EventPurchaseCompleted)
	assert.Equal(t, 50.0, purchase.StepConversionRate)
	assert.Equal(t, 50.0, purchase.DropOffRate)
	assert.InDelta(t, 33.33, purchase.OverallConversionRate, 0.01)
}

func TestComputeFunnelZeroGuard(t *testing.T) {
	events, _ := Normalize([]models.Event{
		ev("U1", EventSignupPageView, t0),
		ev("U2", EventSignupPageView, t0),
		ev("U1", EventPurchaseCompleted, t0),
	})

	metrics := ComputeFunnel(events)
	assert.Equal(t, 0, metrics[0].UsersAtStep)
	for _, m := range metrics[1:] {
		assert.Equal(t, 0.0, m.StepConversionRate, m.EventType)
		assert.Equal(t, 0.0, m.OverallConversionRate, m.EventType)
	}
	assert.Equal(t, 2, metricFor(t, metrics, EventSignupPageView).UsersAtStep)
}

func TestComputeFunnelRatesStayInBounds(t *testing.T) {
	// More users at signup than at landing: membership counting is kept,
	// rates are capped.
	events, _ := Normalize([]models.Event{
		ev("U1", EventLandingPageView, t0),
		ev("U1", EventSignupPageView, t0),
		ev("U2", EventSignupPageView, t0),
		ev("U3", EventSignupPageView, t0),
	})

	for _, metrics := range [][]models.FunnelStepMetric{ComputeFunnel(events), ComputeFunnel(nil)} {
		for _, m := range metrics {
			assert.GreaterOrEqual(t, m.StepConversionRate, 0.0)
			assert.LessOrEqual(t, m.StepConversionRate, 100.0)
			assert.GreaterOrEqual(t, m.OverallConversionRate, 0.0)
			assert.LessOrEqual(t, m.OverallConversionRate, 100.0)
			assert.GreaterOrEqual(t, m.DropOffRate, 0.0)
			assert.LessOrEqual(t, m.DropOffRate, 100.0)
		}
	}
	signup := metricFor(t, ComputeFunnel(events), EventSignupPageView)
	assert.Equal(t, 3, signup.UsersAtStep)
	assert.Equal(t, 100.0, signup.StepConversionRate)
	assert.Equal(t, 100.0, signup.OverallConversionRate)
	assert.Equal(t, 0.0, signup.DropOffRate)
}

func TestComputeFunnelIgnoresAppSteps(t *testing.T) {
	events, _ := Normalize([]models.Event{
		ev("U1", EventAppDownload, t0),
		ev("U1", EventFirstLoginApp, t0),
	})
	for _, m := range ComputeFunnel(events) {
		assert.NotEqual(t, EventAppDownload, m.EventType)
		assert.Equal(t, 0, m.UsersAtStep)
	}
}

func TestComputeFunnelByPlatform(t *testing.T) {
	raw := threeUserScenario()
	for i := range raw {
		if raw[i].UserID == "U2" {
			raw[i].Platform = "ios"
		}
	}
	events, _ := Normalize(raw)

	metrics := ComputeFunnelByPlatform(events)
	require.Len(t, metrics, 18)

	assert.Equal(t, "ios", metrics[0].Platform)
	assert.Equal(t, 1, metrics[0].UsersAtStep)
	assert.Equal(t, 0, metrics[1].UsersAtStep)

	assert.Equal(t, "web", metrics[9].Platform)
	assert.Equal(t, 2, metrics[9].UsersAtStep)
	assert.Equal(t, EventSignupPageView, metrics[10].EventType)
	assert.Equal(t, 100.0, metrics[10].StepConversionRate)
}

func TestSummarizePlatforms(t *testing.T) {
	raw := threeUserScenario()
	raw = append(raw, models.Event{UserID: "U4", EventType: EventLandingPageView, Timestamp: t0, Platform: "android"})
	events, _ := Normalize(raw)

	summaries := SummarizePlatforms(events)
	require.Len(t, summaries, 2)

	assert.Equal(t, models.PlatformSummary{Platform: "android", Visitors: 1}, summaries[0])

	web := summaries[1]
	assert.Equal(t, "web", web.Platform)
	assert.Equal(t, 3, web.Visitors)
	assert.Equal(t, 2, web.Signups)
	assert.Equal(t, 1, web.Purchases)
	assert.InDelta(t, 66.67, web.SignupRate, 0.01)
	assert.InDelta(t, 33.33, web.ConversionRate, 0.01)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, percentage(5, 0))
	assert.Equal(t, 0.0, percentage(0, 5))
	assert.Equal(t, 50.0, percentage(1, 2))
	assert.Equal(t, 100.0, percentage(3, 2))
}
