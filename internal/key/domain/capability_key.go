// Package domain defines capability key domain models and errors.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// descriptionPrefix and descriptionSeparator form the immutable description
// encoding written into the asset at issuance time:
//
//	device:<address>|validto:<epoch-ms>
const (
	descriptionDevicePrefix  = "device:"
	descriptionValidToPrefix = "validto:"
	descriptionSeparator     = "|"
)

// CapabilityKey is a unique, non-divisible ledger asset authorizing commands
// on a single device until its expiry. Device address and expiry are fixed
// at issuance; only the owner changes (via transfer) and existence (via burn).
type CapabilityKey struct {
	ID            string
	Issuer        string
	Owner         string
	DeviceAddress string
	ValidTo       int64
}

// Expired reports whether the key's validity window has passed at the given
// instant.
func (k *CapabilityKey) Expired(now time.Time) bool {
	return k.ValidTo <= now.UnixMilli()
}

// EncodeDescription builds the immutable asset description binding a key to
// a device address and an epoch-millisecond expiry.
func EncodeDescription(deviceAddress string, validTo int64) string {
	return descriptionDevicePrefix + deviceAddress +
		descriptionSeparator +
		descriptionValidToPrefix + strconv.FormatInt(validTo, 10)
}

// ParseDescription extracts the device address and expiry from an asset
// description. Returns ErrMalformedDescription when the description does not
// follow the issuance encoding.
func ParseDescription(description string) (deviceAddress string, validTo int64, err error) {
	parts := strings.Split(description, descriptionSeparator)
	if len(parts) != 2 {
		return "", 0, ErrMalformedDescription
	}
	if !strings.HasPrefix(parts[0], descriptionDevicePrefix) ||
		!strings.HasPrefix(parts[1], descriptionValidToPrefix) {
		return "", 0, ErrMalformedDescription
	}

	deviceAddress = strings.TrimPrefix(parts[0], descriptionDevicePrefix)
	if deviceAddress == "" {
		return "", 0, ErrMalformedDescription
	}

	validTo, parseErr := strconv.ParseInt(strings.TrimPrefix(parts[1], descriptionValidToPrefix), 10, 64)
	if parseErr != nil {
		return "", 0, fmt.Errorf("%w: %s", ErrMalformedDescription, parseErr)
	}
	return deviceAddress, validTo, nil
}

// BatchRequest asks for a number of keys to be issued for one device and
// optionally transferred to a recipient.
type BatchRequest struct {
	DeviceAddress    string
	ValidTo          int64
	Amount           int
	RecipientAddress string
}

// BatchUnitResult captures the outcome of one unit of a batch issuance.
// Each unit succeeds or fails independently of its siblings.
type BatchUnitResult struct {
	KeyID         string `json:"keyId,omitempty"`
	TransferTxID  string `json:"transferTxId,omitempty"`
	WhitelistTxID string `json:"whitelistTxId,omitempty"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}
