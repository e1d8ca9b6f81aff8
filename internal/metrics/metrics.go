package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	postingsCreated       metric.Int64Counter
	postingsApproved      metric.Int64Counter
	applicationsSubmitted metric.Int64Counter
	offersExtended        metric.Int64Counter
	offersAccepted        metric.Int64Counter
	withdrawalsRequested  metric.Int64Counter
	withdrawalsApproved   metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.postingsCreated, err = meter.Int64Counter(
		"internship_service.postings.created",
		metric.WithDescription("Total number of internship postings created"),
		metric.WithUnit("{posting}"),
	)
	if err != nil {
		return nil, err
	}

	m.postingsApproved, err = meter.Int64Counter(
		"internship_service.postings.approved",
		metric.WithDescription("Total number of internship postings approved by staff"),
		metric.WithUnit("{posting}"),
	)
	if err != nil {
		return nil, err
	}

	m.applicationsSubmitted, err = meter.Int64Counter(
		"internship_service.applications.submitted",
		metric.WithDescription("Total number of applications submitted"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, err
	}

	m.offersExtended, err = meter.Int64Counter(
		"internship_service.offers.extended",
		metric.WithDescription("Total number of offers extended to applicants"),
		metric.WithUnit("{offer}"),
	)
	if err != nil {
		return nil, err
	}

	m.offersAccepted, err = meter.Int64Counter(
		"internship_service.offers.accepted",
		metric.WithDescription("Total number of offers accepted by students"),
		metric.WithUnit("{offer}"),
	)
	if err != nil {
		return nil, err
	}

	m.withdrawalsRequested, err = meter.Int64Counter(
		"internship_service.withdrawals.requested",
		metric.WithDescription("Total number of withdrawal requests filed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.withdrawalsApproved, err = meter.Int64Counter(
		"internship_service.withdrawals.approved",
		metric.WithDescription("Total number of withdrawal requests approved by staff"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordPostingCreated(ctx context.Context) {
	m.postingsCreated.Add(ctx, 1)
}

func (m *Metrics) RecordPostingApproved(ctx context.Context) {
	m.postingsApproved.Add(ctx, 1)
}

func (m *Metrics) RecordApplicationSubmitted(ctx context.Context) {
	m.applicationsSubmitted.Add(ctx, 1)
}

func (m *Metrics) RecordOfferExtended(ctx context.Context) {
	m.offersExtended.Add(ctx, 1)
}

func (m *Metrics) RecordOfferAccepted(ctx context.Context) {
	m.offersAccepted.Add(ctx, 1)
}

func (m *Metrics) RecordWithdrawalRequested(ctx context.Context) {
	m.withdrawalsRequested.Add(ctx, 1)
}

func (m *Metrics) RecordWithdrawalApproved(ctx context.Context) {
	m.withdrawalsApproved.Add(ctx, 1)
}
