package dto

import (
	keyDomain "github.com/keygrid/keygrid/internal/key/domain"
)

// IssueKeyResponse reports the transactions of a single key issuance.
type IssueKeyResponse struct {
	KeyID         string `json:"keyId"`
	WhitelistTxID string `json:"whitelistTxId"`
	TransferTxID  string `json:"transferTxId,omitempty"`
}

// BatchIssueKeysResponse wraps the ordered per-unit results of a batch
// issuance.
type BatchIssueKeysResponse struct {
	Results []keyDomain.BatchUnitResult `json:"results"`
}

// KeyResponse represents a capability key in API responses.
type KeyResponse struct {
	ID            string `json:"id"`
	Issuer        string `json:"issuer"`
	Owner         string `json:"owner"`
	DeviceAddress string `json:"deviceAddress"`
	ValidTo       int64  `json:"validTo"`
}

// MapKeyToResponse converts a domain capability key to an API response.
func MapKeyToResponse(key *keyDomain.CapabilityKey) KeyResponse {
	return KeyResponse{
		ID:            key.ID,
		Issuer:        key.Issuer,
		Owner:         key.Owner,
		DeviceAddress: key.DeviceAddress,
		ValidTo:       key.ValidTo,
	}
}

// TransactionResponse reports the id of a single submitted transaction.
type TransactionResponse struct {
	TxID string `json:"txId"`
}
