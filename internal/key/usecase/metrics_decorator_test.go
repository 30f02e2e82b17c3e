package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/keygrid/keygrid/internal/errors"
	"github.com/keygrid/keygrid/internal/key/domain"
	"github.com/keygrid/keygrid/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func TestIssuerMetricsDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		issuer := &mockIssuerUseCase{}
		bm := &mockBusinessMetrics{}

		issuer.On("Issue", ctx, "3NDevice", int64(1700003600000)).
			Return("key-1", nil).
			Once()
		bm.On("RecordOperation", ctx, "key", "issue", "success").Once()
		bm.On("RecordDuration", ctx, "key", "issue", mock.Anything, "success").Once()

		decorator := NewIssuerUseCaseWithMetrics(issuer, bm)
		keyID, err := decorator.Issue(ctx, "3NDevice", 1700003600000)

		assert.NoError(t, err)
		assert.Equal(t, "key-1", keyID)
		issuer.AssertExpectations(t)
		bm.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		issuer := &mockIssuerUseCase{}
		bm := &mockBusinessMetrics{}

		issuer.On("Revoke", ctx, "key-1").
			Return("", domain.ErrKeyNotHeld).
			Once()
		bm.On("RecordOperation", ctx, "key", "revoke", "error").Once()
		bm.On("RecordDuration", ctx, "key", "revoke", mock.Anything, "error").Once()

		decorator := NewIssuerUseCaseWithMetrics(issuer, bm)
		_, err := decorator.Revoke(ctx, "key-1")

		assert.ErrorIs(t, err, domain.ErrKeyNotHeld)
		bm.AssertExpectations(t)
	})

	t.Run("Success_PassesThroughGet", func(t *testing.T) {
		issuer := &mockIssuerUseCase{}
		bm := &mockBusinessMetrics{}

		key := &domain.CapabilityKey{ID: "key-1", DeviceAddress: "3NDevice", ValidTo: 1700003600000}
		issuer.On("Get", ctx, "key-1").Return(key, nil).Once()
		bm.On("RecordOperation", ctx, "key", "get", "success").Once()
		bm.On("RecordDuration", ctx, "key", "get", mock.Anything, "success").Once()

		decorator := NewIssuerUseCaseWithMetrics(issuer, bm)
		got, err := decorator.Get(ctx, "key-1")

		assert.NoError(t, err)
		assert.Equal(t, key, got)
	})
}

// mockBatchIssuerUseCase is a mock implementation of BatchIssuerUseCase.
type mockBatchIssuerUseCase struct {
	mock.Mock
}

func (m *mockBatchIssuerUseCase) IssueBatch(
	ctx context.Context,
	req *domain.BatchRequest,
) ([]domain.BatchUnitResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchUnitResult), args.Error(1)
}

func TestBatchIssuerMetricsDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		batch := &mockBatchIssuerUseCase{}
		bm := &mockBusinessMetrics{}

		req := &domain.BatchRequest{DeviceAddress: "3NDevice", ValidTo: 1700003600000, Amount: 1}
		batch.On("IssueBatch", ctx, req).
			Return([]domain.BatchUnitResult{{KeyID: "key-1", Success: true}}, nil).
			Once()
		bm.On("RecordOperation", ctx, "key", "issue_batch", "success").Once()
		bm.On("RecordDuration", ctx, "key", "issue_batch", mock.Anything, "success").Once()

		decorator := NewBatchIssuerUseCaseWithMetrics(batch, bm)
		results, err := decorator.IssueBatch(ctx, req)

		assert.NoError(t, err)
		assert.Len(t, results, 1)
		bm.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		batch := &mockBatchIssuerUseCase{}
		bm := &mockBusinessMetrics{}

		req := &domain.BatchRequest{DeviceAddress: "3NDevice", Amount: 500}
		batch.On("IssueBatch", ctx, req).
			Return(nil, apperrors.ErrLimitExceeded).
			Once()
		bm.On("RecordOperation", ctx, "key", "issue_batch", "error").Once()
		bm.On("RecordDuration", ctx, "key", "issue_batch", mock.Anything, "error").Once()

		decorator := NewBatchIssuerUseCaseWithMetrics(batch, bm)
		_, err := decorator.IssueBatch(ctx, req)

		assert.ErrorIs(t, err, apperrors.ErrLimitExceeded)
		bm.AssertExpectations(t)
	})
}
