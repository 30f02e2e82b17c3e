package dto

// TransactionResponse reports the id of a single submitted transaction.
type TransactionResponse struct {
	TxID string `json:"txId"`
}

// ListDevicesResponse wraps the registered device addresses.
type ListDevicesResponse struct {
	Devices []string `json:"devices"`
}
