// Package mocks provides mock implementations of the ledger gateway for
// use case and handler tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/keygrid/keygrid/internal/ledger"
)

// MockGateway is a mock implementation of ledger.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) FetchToken(ctx context.Context, tokenID string) (*ledger.Token, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Token), args.Error(1)
}

func (m *MockGateway) FetchTokenOwnerAtHeight(ctx context.Context, tokenID string, height int64) (string, error) {
	args := m.Called(ctx, tokenID, height)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) FetchEntry(ctx context.Context, address, key string) (*ledger.DataEntry, error) {
	args := m.Called(ctx, address, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.DataEntry), args.Error(1)
}

func (m *MockGateway) FetchEntriesByPattern(ctx context.Context, address, pattern string) ([]ledger.DataEntry, error) {
	args := m.Called(ctx, address, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.DataEntry), args.Error(1)
}

func (m *MockGateway) FetchHeight(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) FetchAccountBalance(ctx context.Context, address string) (int64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) Broadcast(ctx context.Context, tx *ledger.Transaction) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) AwaitAcceptance(ctx context.Context, txID string) error {
	args := m.Called(ctx, txID)
	return args.Error(0)
}
