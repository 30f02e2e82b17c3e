package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/keygrid/keygrid/internal/command/domain"
	apperrors "github.com/keygrid/keygrid/internal/errors"
	keyDomain "github.com/keygrid/keygrid/internal/key/domain"
	"github.com/keygrid/keygrid/internal/ledger"
	ledgerMocks "github.com/keygrid/keygrid/internal/ledger/mocks"
	"github.com/keygrid/keygrid/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testNowMillis int64 = 1700000000000

// mockVerifier is a mock implementation of TransactionVerifier.
type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(tx *ledger.Transaction) error {
	args := m.Called(tx)
	return args.Error(0)
}

func (m *mockVerifier) SenderAddress(tx *ledger.Transaction) (string, error) {
	args := m.Called(tx)
	return args.String(0), args.Error(1)
}

func newTestAuthorizer(t *testing.T) (*authorizerUseCase, *ledgerMocks.MockGateway, *mockVerifier, string) {
	t.Helper()

	gateway := &ledgerMocks.MockGateway{}
	verifier := &mockVerifier{}
	authority := testutil.Address(t, 1)

	uc := &authorizerUseCase{
		gateway:          gateway,
		verifier:         verifier,
		authorityAddress: authority,
		now:              func() time.Time { return time.UnixMilli(testNowMillis) },
	}
	return uc, gateway, verifier, authority
}

func activeEntry(key string) *ledger.DataEntry {
	return &ledger.DataEntry{Key: key, Value: ledger.EntryActive}
}

func TestAuthorizer_Direct(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_AllPredicatesHold", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		device := testutil.Address(t, 2)
		token := testutil.NewToken("key-1", authority, authority, device, testNowMillis+1)
		req := &domain.Request{
			DeviceAddress: device,
			Command:       "open",
			KeyID:         "key-1",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(authority, nil).Once()
		gateway.On("FetchToken", mock.Anything, "key-1").Return(token, nil).Once()
		gateway.On("FetchEntry", mock.Anything, authority, ledger.DeviceKey(device)).
			Return(activeEntry(ledger.DeviceKey(device)), nil).
			Once()
		gateway.On("FetchEntry", mock.Anything, device, ledger.TokenKey("key-1")).
			Return(activeEntry(ledger.TokenKey("key-1")), nil).
			Once()
		gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Once()
		gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(authority, nil).
			Once()

		result, err := uc.Authorize(ctx, req)

		require.NoError(t, err)
		assert.True(t, result.Verified)
		assert.Empty(t, result.Error)
		gateway.AssertExpectations(t)
		verifier.AssertExpectations(t)
	})

	t.Run("Rejected_SignatureInvalid", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		req := &domain.Request{
			DeviceAddress: testutil.Address(t, 2),
			KeyID:         "key-1",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		verifier.On("Verify", req.Transaction).
			Return(apperrors.New("signature does not match payload")).
			Once()

		result, err := uc.Authorize(ctx, req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "Transaction not verified", result.Error)
		// No ledger read happens after a signature failure.
		gateway.AssertNotCalled(t, "FetchToken", mock.Anything, mock.Anything)
	})

	t.Run("Rejected_SignerAddressUnderivable", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		req := &domain.Request{
			DeviceAddress: testutil.Address(t, 2),
			KeyID:         "key-1",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		// A verified signature with a public key that yields no address is
		// still an unusable request.
		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).
			Return("", apperrors.New("decode sender public key: invalid base58")).
			Once()

		result, err := uc.Authorize(ctx, req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "Transaction not verified", result.Error)
		gateway.AssertNotCalled(t, "FetchToken", mock.Anything, mock.Anything)
	})

	t.Run("Error_KeyNotFound", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		req := &domain.Request{
			DeviceAddress: testutil.Address(t, 2),
			KeyID:         "missing",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(authority, nil).Once()
		gateway.On("FetchToken", mock.Anything, "missing").
			Return(nil, ledger.ErrTokenNotFound).
			Once()

		result, err := uc.Authorize(ctx, req)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, keyDomain.ErrKeyNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Rejected_KeyExpired", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		device := testutil.Address(t, 2)
		// One millisecond in the past.
		token := testutil.NewToken("key-1", authority, authority, device, testNowMillis-1)
		req := &domain.Request{
			DeviceAddress: device,
			KeyID:         "key-1",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(authority, nil).Once()
		gateway.On("FetchToken", mock.Anything, "key-1").Return(token, nil).Once()
		gateway.On("FetchEntry", mock.Anything, authority, ledger.DeviceKey(device)).
			Return(activeEntry(ledger.DeviceKey(device)), nil).
			Maybe()
		gateway.On("FetchEntry", mock.Anything, device, ledger.TokenKey("key-1")).
			Return(activeEntry(ledger.TokenKey("key-1")), nil).
			Maybe()
		gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Maybe()
		gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(authority, nil).
			Maybe()

		result, err := uc.Authorize(ctx, req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "key has expired", result.Error)
	})

	t.Run("Rejected_KeyBoundToOtherDevice", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		device := testutil.Address(t, 2)
		otherDevice := testutil.Address(t, 5)
		token := testutil.NewToken("key-1", authority, authority, otherDevice, testNowMillis+1)
		req := &domain.Request{
			DeviceAddress: device,
			KeyID:         "key-1",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(authority, nil).Once()
		gateway.On("FetchToken", mock.Anything, "key-1").Return(token, nil).Once()
		gateway.On("FetchEntry", mock.Anything, authority, ledger.DeviceKey(device)).
			Return(activeEntry(ledger.DeviceKey(device)), nil).
			Maybe()
		gateway.On("FetchEntry", mock.Anything, device, ledger.TokenKey("key-1")).
			Return(activeEntry(ledger.TokenKey("key-1")), nil).
			Maybe()
		gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Maybe()
		gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(authority, nil).
			Maybe()

		result, err := uc.Authorize(ctx, req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "key is not valid for this device", result.Error)
	})

	t.Run("Rejected_NotKeyOwner", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		device := testutil.Address(t, 2)
		formerOwner := testutil.Address(t, 3)
		token := testutil.NewToken("key-1", authority, authority, device, testNowMillis+1)
		req := &domain.Request{
			DeviceAddress: device,
			KeyID:         "key-1",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(authority, nil).Once()
		gateway.On("FetchToken", mock.Anything, "key-1").Return(token, nil).Once()
		gateway.On("FetchEntry", mock.Anything, authority, ledger.DeviceKey(device)).
			Return(activeEntry(ledger.DeviceKey(device)), nil).
			Maybe()
		gateway.On("FetchEntry", mock.Anything, device, ledger.TokenKey("key-1")).
			Return(activeEntry(ledger.TokenKey("key-1")), nil).
			Maybe()
		gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Maybe()
		gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(formerOwner, nil).
			Maybe()

		result, err := uc.Authorize(ctx, req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "address is not key owner", result.Error)
	})

	t.Run("Rejected_DeviceNotWhitelisted", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		device := testutil.Address(t, 2)
		token := testutil.NewToken("key-1", authority, authority, device, testNowMillis+1)
		req := &domain.Request{
			DeviceAddress: device,
			KeyID:         "key-1",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(authority, nil).Once()
		gateway.On("FetchToken", mock.Anything, "key-1").Return(token, nil).Once()
		// Absent entry counts as "not whitelisted", never as an error.
		gateway.On("FetchEntry", mock.Anything, authority, ledger.DeviceKey(device)).
			Return(nil, ledger.ErrEntryNotFound).
			Maybe()
		gateway.On("FetchEntry", mock.Anything, device, ledger.TokenKey("key-1")).
			Return(activeEntry(ledger.TokenKey("key-1")), nil).
			Maybe()
		gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Maybe()
		gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(authority, nil).
			Maybe()

		result, err := uc.Authorize(ctx, req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "device is not whitelisted", result.Error)
	})

	t.Run("Rejected_KeyNotWhitelistedOnDevice", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		device := testutil.Address(t, 2)
		token := testutil.NewToken("key-1", authority, authority, device, testNowMillis+1)
		req := &domain.Request{
			DeviceAddress: device,
			KeyID:         "key-1",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(authority, nil).Once()
		gateway.On("FetchToken", mock.Anything, "key-1").Return(token, nil).Once()
		gateway.On("FetchEntry", mock.Anything, authority, ledger.DeviceKey(device)).
			Return(activeEntry(ledger.DeviceKey(device)), nil).
			Maybe()
		// Any value other than "active" is not whitelisted.
		gateway.On("FetchEntry", mock.Anything, device, ledger.TokenKey("key-1")).
			Return(&ledger.DataEntry{Key: ledger.TokenKey("key-1"), Value: "revoked"}, nil).
			Maybe()
		gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Maybe()
		gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(authority, nil).
			Maybe()

		result, err := uc.Authorize(ctx, req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "key is not whitelisted on device", result.Error)
	})

	t.Run("Error_TransportFailurePropagates", func(t *testing.T) {
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		device := testutil.Address(t, 2)
		token := testutil.NewToken("key-1", authority, authority, device, testNowMillis+1)
		req := &domain.Request{
			DeviceAddress: device,
			KeyID:         "key-1",
			OwnerAddress:  authority,
			Transaction:   &ledger.Transaction{},
		}

		transportErr := apperrors.New("ledger unavailable")

		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(authority, nil).Once()
		gateway.On("FetchToken", mock.Anything, "key-1").Return(token, nil).Once()
		gateway.On("FetchEntry", mock.Anything, authority, ledger.DeviceKey(device)).
			Return(nil, transportErr).
			Maybe()
		gateway.On("FetchEntry", mock.Anything, device, ledger.TokenKey("key-1")).
			Return(activeEntry(ledger.TokenKey("key-1")), nil).
			Maybe()
		gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Maybe()
		gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(authority, nil).
			Maybe()

		result, err := uc.Authorize(ctx, req)

		// Could not determine authorization: distinct from a rejection.
		assert.Nil(t, result)
		assert.ErrorIs(t, err, transportErr)
		assert.NotErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestAuthorizer_Delegated(t *testing.T) {
	ctx := context.Background()

	// newDelegatedFixture wires a request where the key sits on an
	// organisation account and the caller acts as one of its members.
	type fixture struct {
		uc        *authorizerUseCase
		gateway   *ledgerMocks.MockGateway
		authority string
		device    string
		org       string
		caller    string
		token     *ledger.Token
		req       *domain.Request
	}

	newDelegatedFixture := func(t *testing.T) *fixture {
		t.Helper()
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		device := testutil.Address(t, 2)
		org := testutil.Address(t, 3)
		caller := testutil.Address(t, 4)
		token := testutil.NewToken("key-1", authority, org, device, testNowMillis+1)
		req := &domain.Request{
			DeviceAddress: device,
			Command:       "open",
			KeyID:         "key-1",
			OwnerAddress:  org,
			Transaction:   &ledger.Transaction{},
		}
		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(caller, nil).Once()
		gateway.On("FetchToken", mock.Anything, "key-1").Return(token, nil).Once()
		return &fixture{
			uc: uc, gateway: gateway, authority: authority,
			device: device, org: org, caller: caller,
			token: token, req: req,
		}
	}

	passDirect := func(f *fixture) {
		f.gateway.On("FetchEntry", mock.Anything, f.authority, ledger.DeviceKey(f.device)).
			Return(activeEntry(ledger.DeviceKey(f.device)), nil).
			Maybe()
		f.gateway.On("FetchEntry", mock.Anything, f.device, ledger.TokenKey("key-1")).
			Return(activeEntry(ledger.TokenKey("key-1")), nil).
			Maybe()
		f.gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Maybe()
		f.gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(f.org, nil).
			Maybe()
	}

	t.Run("Success_AllSixPredicatesHold", func(t *testing.T) {
		f := newDelegatedFixture(t)
		passDirect(f)
		f.gateway.On("FetchEntry", mock.Anything, f.org, ledger.UserKey(f.caller)).
			Return(activeEntry(ledger.UserKey(f.caller)), nil).
			Once()
		f.gateway.On("FetchEntry", mock.Anything, f.authority, ledger.OrgKey(f.org)).
			Return(activeEntry(ledger.OrgKey(f.org)), nil).
			Once()

		result, err := f.uc.Authorize(ctx, f.req)

		require.NoError(t, err)
		assert.True(t, result.Verified)
	})

	t.Run("Rejected_UserNotInOrganisation", func(t *testing.T) {
		f := newDelegatedFixture(t)
		passDirect(f)
		f.gateway.On("FetchEntry", mock.Anything, f.org, ledger.UserKey(f.caller)).
			Return(nil, ledger.ErrEntryNotFound).
			Maybe()
		f.gateway.On("FetchEntry", mock.Anything, f.authority, ledger.OrgKey(f.org)).
			Return(activeEntry(ledger.OrgKey(f.org)), nil).
			Maybe()

		result, err := f.uc.Authorize(ctx, f.req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "user is not in organisation", result.Error)
	})

	t.Run("Rejected_OrganisationNotWhitelisted", func(t *testing.T) {
		f := newDelegatedFixture(t)
		passDirect(f)
		f.gateway.On("FetchEntry", mock.Anything, f.org, ledger.UserKey(f.caller)).
			Return(activeEntry(ledger.UserKey(f.caller)), nil).
			Maybe()
		f.gateway.On("FetchEntry", mock.Anything, f.authority, ledger.OrgKey(f.org)).
			Return(nil, ledger.ErrEntryNotFound).
			Maybe()

		result, err := f.uc.Authorize(ctx, f.req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "organisation is not whitelisted", result.Error)
	})

	t.Run("Rejected_OrganisationDoesNotOwnKey", func(t *testing.T) {
		f := newDelegatedFixture(t)
		otherOwner := testutil.Address(t, 6)
		f.gateway.On("FetchEntry", mock.Anything, f.authority, ledger.DeviceKey(f.device)).
			Return(activeEntry(ledger.DeviceKey(f.device)), nil).
			Maybe()
		f.gateway.On("FetchEntry", mock.Anything, f.device, ledger.TokenKey("key-1")).
			Return(activeEntry(ledger.TokenKey("key-1")), nil).
			Maybe()
		f.gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Maybe()
		f.gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(otherOwner, nil).
			Maybe()
		f.gateway.On("FetchEntry", mock.Anything, f.org, ledger.UserKey(f.caller)).
			Return(activeEntry(ledger.UserKey(f.caller)), nil).
			Maybe()
		f.gateway.On("FetchEntry", mock.Anything, f.authority, ledger.OrgKey(f.org)).
			Return(activeEntry(ledger.OrgKey(f.org)), nil).
			Maybe()

		result, err := f.uc.Authorize(ctx, f.req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		// The ownership predicate's subject is the organisation here.
		assert.Equal(t, "organisation does not own the key", result.Error)
	})

	t.Run("Rejected_SignerNotOrganisationMember", func(t *testing.T) {
		// The organisation has a member on file, but the transaction is
		// signed by someone else. Membership must be checked against the
		// signer's derived address, so the request is rejected even though
		// a matching member exists.
		uc, gateway, verifier, authority := newTestAuthorizer(t)
		device := testutil.Address(t, 2)
		org := testutil.Address(t, 3)
		member := testutil.Address(t, 4)
		outsider := testutil.Address(t, 7)
		token := testutil.NewToken("key-1", authority, org, device, testNowMillis+1)
		req := &domain.Request{
			DeviceAddress: device,
			Command:       "open",
			KeyID:         "key-1",
			OwnerAddress:  org,
			Transaction:   &ledger.Transaction{},
		}

		verifier.On("Verify", req.Transaction).Return(nil).Once()
		verifier.On("SenderAddress", req.Transaction).Return(outsider, nil).Once()
		gateway.On("FetchToken", mock.Anything, "key-1").Return(token, nil).Once()
		gateway.On("FetchEntry", mock.Anything, authority, ledger.DeviceKey(device)).
			Return(activeEntry(ledger.DeviceKey(device)), nil).
			Maybe()
		gateway.On("FetchEntry", mock.Anything, device, ledger.TokenKey("key-1")).
			Return(activeEntry(ledger.TokenKey("key-1")), nil).
			Maybe()
		gateway.On("FetchHeight", mock.Anything).Return(int64(100), nil).Maybe()
		gateway.On("FetchTokenOwnerAtHeight", mock.Anything, "key-1", int64(99)).
			Return(org, nil).
			Maybe()
		gateway.On("FetchEntry", mock.Anything, org, ledger.UserKey(outsider)).
			Return(nil, ledger.ErrEntryNotFound).
			Maybe()
		gateway.On("FetchEntry", mock.Anything, authority, ledger.OrgKey(org)).
			Return(activeEntry(ledger.OrgKey(org)), nil).
			Maybe()

		result, err := uc.Authorize(ctx, req)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, "user is not in organisation", result.Error)
		// The legitimate member's entry is never consulted.
		gateway.AssertNotCalled(t, "FetchEntry", mock.Anything, org, ledger.UserKey(member))
	})
}
