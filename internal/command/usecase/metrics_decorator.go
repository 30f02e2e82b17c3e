package usecase

import (
	"context"
	"time"

	"github.com/keygrid/keygrid/internal/command/domain"
	"github.com/keygrid/keygrid/internal/metrics"
)

const metricsDomain = "command"

// authorizerUseCaseWithMetrics decorates AuthorizerUseCase with business
// metrics. Policy rejections count as successful operations; only
// undeterminable authorizations record an error status.
type authorizerUseCaseWithMetrics struct {
	base            AuthorizerUseCase
	businessMetrics metrics.BusinessMetrics
}

// NewAuthorizerUseCaseWithMetrics wraps an authorizer use case with
// operation and duration metrics.
func NewAuthorizerUseCaseWithMetrics(
	base AuthorizerUseCase,
	businessMetrics metrics.BusinessMetrics,
) AuthorizerUseCase {
	return &authorizerUseCaseWithMetrics{base: base, businessMetrics: businessMetrics}
}

func (d *authorizerUseCaseWithMetrics) Authorize(
	ctx context.Context,
	req *domain.Request,
) (*domain.Result, error) {
	start := time.Now()
	result, err := d.base.Authorize(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	d.businessMetrics.RecordOperation(ctx, metricsDomain, "authorize", status)
	d.businessMetrics.RecordDuration(ctx, metricsDomain, "authorize", time.Since(start), status)

	return result, err
}
