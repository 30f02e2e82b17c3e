package ledger

import (
	"encoding/json"
)

// TxType identifies the kind of ledger transaction.
type TxType string

// Supported transaction kinds.
const (
	TxIssue    TxType = "issue"
	TxTransfer TxType = "transfer"
	TxBurn     TxType = "burn"
	TxData     TxType = "data"
)

// Transaction is the wire form of a ledger transaction. A transaction is
// built, signed (filling Sender, SenderPublicKey, Signature and ID) and then
// broadcast as a single discrete write.
//
// The type-specific fields are used as follows:
//
//	issue:    Name, Description, Quantity, Decimals, Reissuable
//	transfer: AssetID, Quantity, Recipient
//	burn:     AssetID, Quantity
//	data:     Address (target account storage), Entries
type Transaction struct {
	Type            TxType      `json:"type"`
	ID              string      `json:"id,omitempty"`
	ChainID         string      `json:"chainId"`
	Sender          string      `json:"sender,omitempty"`
	SenderPublicKey string      `json:"senderPublicKey"`
	Signature       string      `json:"signature,omitempty"`
	Fee             int64       `json:"fee"`
	Timestamp       int64       `json:"timestamp"`
	Name            string      `json:"name,omitempty"`
	Description     string      `json:"description,omitempty"`
	Quantity        int64       `json:"quantity,omitempty"`
	Decimals        int         `json:"decimals,omitempty"`
	Reissuable      bool        `json:"reissuable,omitempty"`
	AssetID         string      `json:"assetId,omitempty"`
	Recipient       string      `json:"recipient,omitempty"`
	Address         string      `json:"address,omitempty"`
	Entries         []DataEntry `json:"entries,omitempty"`
}

// txBody mirrors Transaction without the signature-dependent fields. Field
// order is fixed, so encoding/json produces canonical bytes.
type txBody struct {
	Type            TxType      `json:"type"`
	ChainID         string      `json:"chainId"`
	Sender          string      `json:"sender,omitempty"`
	SenderPublicKey string      `json:"senderPublicKey"`
	Fee             int64       `json:"fee"`
	Timestamp       int64       `json:"timestamp"`
	Name            string      `json:"name,omitempty"`
	Description     string      `json:"description,omitempty"`
	Quantity        int64       `json:"quantity,omitempty"`
	Decimals        int         `json:"decimals,omitempty"`
	Reissuable      bool        `json:"reissuable,omitempty"`
	AssetID         string      `json:"assetId,omitempty"`
	Recipient       string      `json:"recipient,omitempty"`
	Address         string      `json:"address,omitempty"`
	Entries         []DataEntry `json:"entries,omitempty"`
}

// BodyBytes returns the canonical byte representation of the transaction
// used for signing and signature verification. The id and signature fields
// are excluded.
func (t *Transaction) BodyBytes() ([]byte, error) {
	body := txBody{
		Type:            t.Type,
		ChainID:         t.ChainID,
		Sender:          t.Sender,
		SenderPublicKey: t.SenderPublicKey,
		Fee:             t.Fee,
		Timestamp:       t.Timestamp,
		Name:            t.Name,
		Description:     t.Description,
		Quantity:        t.Quantity,
		Decimals:        t.Decimals,
		Reissuable:      t.Reissuable,
		AssetID:         t.AssetID,
		Recipient:       t.Recipient,
		Address:         t.Address,
		Entries:         t.Entries,
	}
	return json.Marshal(body)
}
