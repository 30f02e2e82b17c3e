package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/keygrid/keygrid/internal/command/domain"
	apperrors "github.com/keygrid/keygrid/internal/errors"
	keyDomain "github.com/keygrid/keygrid/internal/key/domain"
	"github.com/keygrid/keygrid/internal/ledger"
)

// directChecks runs the direct strategy: the key sits on the authority's own
// account, so only device/key whitelisting, ownership at the finalized
// height and key validity are checked. All predicates run concurrently and
// the group resolves with the first failure.
func (u *authorizerUseCase) directChecks(ctx context.Context, req *domain.Request, token *ledger.Token, _ string) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return u.deviceIsWhitelisted(groupCtx, req.DeviceAddress)
	})
	group.Go(func() error {
		return u.keyIsWhitelisted(groupCtx, req.KeyID, req.DeviceAddress)
	})
	group.Go(func() error {
		return u.addressOwnsKey(groupCtx, req.KeyID, req.OwnerAddress, domain.MsgNotKeyOwner)
	})
	group.Go(func() error {
		return u.keyIsValid(token, req.DeviceAddress)
	})

	return group.Wait()
}

// delegatedChecks runs the delegated strategy: the direct predicate set plus
// organisation whitelisting and caller membership. The caller is the address
// derived from the transaction's signer key. The ownership predicate's
// subject is the organisation, so its rejection message changes accordingly.
func (u *authorizerUseCase) delegatedChecks(
	ctx context.Context,
	req *domain.Request,
	token *ledger.Token,
	callerAddress string,
) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return u.deviceIsWhitelisted(groupCtx, req.DeviceAddress)
	})
	group.Go(func() error {
		return u.keyIsWhitelisted(groupCtx, req.KeyID, req.DeviceAddress)
	})
	group.Go(func() error {
		return u.addressOwnsKey(groupCtx, req.KeyID, req.OwnerAddress, domain.MsgOrgNotKeyOwner)
	})
	group.Go(func() error {
		return u.keyIsValid(token, req.DeviceAddress)
	})
	group.Go(func() error {
		return u.userIsInOrganisation(groupCtx, callerAddress, req.OwnerAddress)
	})
	group.Go(func() error {
		return u.organisationIsWhitelisted(groupCtx, req.OwnerAddress)
	})

	return group.Wait()
}

// fetchEntryActive loads one storage entry and reports whether it marks its
// subject active. An absent entry counts as inactive, never as an error.
func (u *authorizerUseCase) fetchEntryActive(ctx context.Context, address, key string) (bool, error) {
	entry, err := u.gateway.FetchEntry(ctx, address, key)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return ledger.IsActive(entry), nil
}

// deviceIsWhitelisted checks the device's entry in the authority's device
// whitelist.
func (u *authorizerUseCase) deviceIsWhitelisted(ctx context.Context, deviceAddress string) error {
	active, err := u.fetchEntryActive(ctx, u.authorityAddress, ledger.DeviceKey(deviceAddress))
	if err != nil {
		return err
	}
	if !active {
		return domain.NewPolicyViolation(domain.MsgDeviceNotWhitelisted)
	}
	return nil
}

// keyIsWhitelisted checks the key's entry in the device's own key whitelist.
func (u *authorizerUseCase) keyIsWhitelisted(ctx context.Context, keyID, deviceAddress string) error {
	active, err := u.fetchEntryActive(ctx, deviceAddress, ledger.TokenKey(keyID))
	if err != nil {
		return err
	}
	if !active {
		return domain.NewPolicyViolation(domain.MsgKeyNotWhitelisted)
	}
	return nil
}

// addressOwnsKey checks that the key's owner at the last finalized height
// minus one equals the presented owner. The one-block offset avoids racing
// transfers that are broadcast but not yet finalized.
func (u *authorizerUseCase) addressOwnsKey(ctx context.Context, keyID, ownerAddress, message string) error {
	height, err := u.gateway.FetchHeight(ctx)
	if err != nil {
		return err
	}

	owner, err := u.gateway.FetchTokenOwnerAtHeight(ctx, keyID, height-1)
	if err != nil {
		return err
	}
	if owner != ownerAddress {
		return domain.NewPolicyViolation(message)
	}
	return nil
}

// keyIsValid checks the key's embedded device binding and expiry against the
// request. It works on the already-fetched token and performs no reads.
func (u *authorizerUseCase) keyIsValid(token *ledger.Token, deviceAddress string) error {
	boundDevice, validTo, err := keyDomain.ParseDescription(token.Description)
	if err != nil {
		return err
	}
	if boundDevice != deviceAddress {
		return domain.NewPolicyViolation(domain.MsgWrongDevice)
	}

	key := &keyDomain.CapabilityKey{
		ID:            token.ID,
		Issuer:        token.Issuer,
		Owner:         token.Owner,
		DeviceAddress: boundDevice,
		ValidTo:       validTo,
	}
	if key.Expired(u.now()) {
		return domain.NewPolicyViolation(domain.MsgKeyExpired)
	}
	return nil
}

// userIsInOrganisation checks the caller's membership entry on the
// organisation account.
func (u *authorizerUseCase) userIsInOrganisation(ctx context.Context, callerAddress, orgAddress string) error {
	active, err := u.fetchEntryActive(ctx, orgAddress, ledger.UserKey(callerAddress))
	if err != nil {
		return err
	}
	if !active {
		return domain.NewPolicyViolation(domain.MsgUserNotInOrganisation)
	}
	return nil
}

// organisationIsWhitelisted checks the organisation's entry in the
// authority's organisation whitelist.
func (u *authorizerUseCase) organisationIsWhitelisted(ctx context.Context, orgAddress string) error {
	active, err := u.fetchEntryActive(ctx, u.authorityAddress, ledger.OrgKey(orgAddress))
	if err != nil {
		return err
	}
	if !active {
		return domain.NewPolicyViolation(domain.MsgOrgNotWhitelisted)
	}
	return nil
}
