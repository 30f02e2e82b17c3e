package usecase

import (
	"context"
	"time"

	"github.com/keygrid/keygrid/internal/key/domain"
	"github.com/keygrid/keygrid/internal/metrics"
)

const metricsDomain = "key"

// issuerUseCaseWithMetrics decorates IssuerUseCase with business metrics.
type issuerUseCaseWithMetrics struct {
	base            IssuerUseCase
	businessMetrics metrics.BusinessMetrics
}

// NewIssuerUseCaseWithMetrics wraps an issuer use case with operation and
// duration metrics.
func NewIssuerUseCaseWithMetrics(base IssuerUseCase, businessMetrics metrics.BusinessMetrics) IssuerUseCase {
	return &issuerUseCaseWithMetrics{base: base, businessMetrics: businessMetrics}
}

// record reports one operation outcome with its duration.
func record(
	ctx context.Context,
	businessMetrics metrics.BusinessMetrics,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	businessMetrics.RecordOperation(ctx, metricsDomain, operation, status)
	businessMetrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (d *issuerUseCaseWithMetrics) Issue(ctx context.Context, deviceAddress string, validTo int64) (string, error) {
	start := time.Now()
	keyID, err := d.base.Issue(ctx, deviceAddress, validTo)
	record(ctx, d.businessMetrics, "issue", start, err)
	return keyID, err
}

func (d *issuerUseCaseWithMetrics) Transfer(ctx context.Context, keyID, recipientAddress string) (string, error) {
	start := time.Now()
	txID, err := d.base.Transfer(ctx, keyID, recipientAddress)
	record(ctx, d.businessMetrics, "transfer", start, err)
	return txID, err
}

func (d *issuerUseCaseWithMetrics) Revoke(ctx context.Context, keyID string) (string, error) {
	start := time.Now()
	txID, err := d.base.Revoke(ctx, keyID)
	record(ctx, d.businessMetrics, "revoke", start, err)
	return txID, err
}

func (d *issuerUseCaseWithMetrics) SetWhitelist(
	ctx context.Context,
	deviceAddress, keyID string,
	active bool,
) (string, error) {
	start := time.Now()
	txID, err := d.base.SetWhitelist(ctx, deviceAddress, keyID, active)
	record(ctx, d.businessMetrics, "set_whitelist", start, err)
	return txID, err
}

func (d *issuerUseCaseWithMetrics) WhitelistKeys(
	ctx context.Context,
	deviceAddress string,
	keyIDs []string,
) (string, error) {
	start := time.Now()
	txID, err := d.base.WhitelistKeys(ctx, deviceAddress, keyIDs)
	record(ctx, d.businessMetrics, "whitelist_keys", start, err)
	return txID, err
}

func (d *issuerUseCaseWithMetrics) Get(ctx context.Context, keyID string) (*domain.CapabilityKey, error) {
	start := time.Now()
	key, err := d.base.Get(ctx, keyID)
	record(ctx, d.businessMetrics, "get", start, err)
	return key, err
}

// batchIssuerUseCaseWithMetrics decorates BatchIssuerUseCase with metrics.
type batchIssuerUseCaseWithMetrics struct {
	base            BatchIssuerUseCase
	businessMetrics metrics.BusinessMetrics
}

// NewBatchIssuerUseCaseWithMetrics wraps a batch issuer use case with
// operation and duration metrics.
func NewBatchIssuerUseCaseWithMetrics(
	base BatchIssuerUseCase,
	businessMetrics metrics.BusinessMetrics,
) BatchIssuerUseCase {
	return &batchIssuerUseCaseWithMetrics{base: base, businessMetrics: businessMetrics}
}

func (d *batchIssuerUseCaseWithMetrics) IssueBatch(
	ctx context.Context,
	req *domain.BatchRequest,
) ([]domain.BatchUnitResult, error) {
	start := time.Now()
	results, err := d.base.IssueBatch(ctx, req)
	record(ctx, d.businessMetrics, "issue_batch", start, err)
	return results, err
}
