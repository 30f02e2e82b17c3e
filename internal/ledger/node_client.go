package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/keygrid/keygrid/internal/errors"
)

// NodeConfig holds the settings for the ledger node HTTP client.
type NodeConfig struct {
	// BaseURL is the node's REST API base URL, without a trailing slash.
	BaseURL string
	// RequestTimeout bounds every single HTTP call to the node.
	RequestTimeout time.Duration
	// TxTimeout bounds how long AwaitAcceptance polls for a transaction.
	TxTimeout time.Duration
	// PollInterval is the delay between acceptance polls. Defaults to one
	// second when zero.
	PollInterval time.Duration
}

// NodeClient implements Gateway against a ledger node's REST API.
//
// Failed calls surface immediately: the client performs no retries and no
// backoff. AwaitAcceptance is the only blocking-until-durable operation.
type NodeClient struct {
	baseURL      string
	client       *http.Client
	txTimeout    time.Duration
	pollInterval time.Duration
}

// NewNodeClient creates a ledger node client from the given configuration.
func NewNodeClient(cfg NodeConfig) *NodeClient {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &NodeClient{
		baseURL:      cfg.BaseURL,
		client:       &http.Client{Timeout: cfg.RequestTimeout},
		txTimeout:    cfg.TxTimeout,
		pollInterval: pollInterval,
	}
}

// tokenDetails is the node's asset details payload.
type tokenDetails struct {
	AssetID     string `json:"assetId"`
	Issuer      string `json:"issuer"`
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	Decimals    int    `json:"decimals"`
	Reissuable  bool   `json:"reissuable"`
}

// FetchToken returns the token's current on-ledger state.
func (n *NodeClient) FetchToken(ctx context.Context, tokenID string) (*Token, error) {
	var details tokenDetails
	err := n.getJSON(ctx, "/assets/details/"+url.PathEscape(tokenID), &details, ErrTokenNotFound)
	if err != nil {
		return nil, err
	}
	return &Token{
		ID:          details.AssetID,
		Issuer:      details.Issuer,
		Owner:       details.Owner,
		Name:        details.Name,
		Description: details.Description,
		Quantity:    details.Quantity,
		Decimals:    details.Decimals,
		Reissuable:  details.Reissuable,
	}, nil
}

// FetchTokenOwnerAtHeight returns the token's owner as of the given height.
func (n *NodeClient) FetchTokenOwnerAtHeight(ctx context.Context, tokenID string, height int64) (string, error) {
	var details tokenDetails
	path := fmt.Sprintf("/assets/details/%s?height=%d", url.PathEscape(tokenID), height)
	if err := n.getJSON(ctx, path, &details, ErrTokenNotFound); err != nil {
		return "", err
	}
	return details.Owner, nil
}

// FetchEntry returns a single key/value entry from an account's storage.
func (n *NodeClient) FetchEntry(ctx context.Context, address, key string) (*DataEntry, error) {
	var entry DataEntry
	path := "/addresses/data/" + url.PathEscape(address) + "/" + url.PathEscape(key)
	if err := n.getJSON(ctx, path, &entry, ErrEntryNotFound); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FetchEntriesByPattern returns all entries on an account matching a pattern.
func (n *NodeClient) FetchEntriesByPattern(ctx context.Context, address, pattern string) ([]DataEntry, error) {
	var entries []DataEntry
	path := "/addresses/data/" + url.PathEscape(address) + "?matches=" + url.QueryEscape(pattern)
	if err := n.getJSON(ctx, path, &entries, ErrEntryNotFound); err != nil {
		return nil, err
	}
	return entries, nil
}

// FetchHeight returns the current finalized block height.
func (n *NodeClient) FetchHeight(ctx context.Context) (int64, error) {
	var payload struct {
		Height int64 `json:"height"`
	}
	if err := n.getJSON(ctx, "/blocks/height", &payload, nil); err != nil {
		return 0, err
	}
	return payload.Height, nil
}

// FetchAccountBalance returns the account's native token balance.
func (n *NodeClient) FetchAccountBalance(ctx context.Context, address string) (int64, error) {
	var payload struct {
		Address string `json:"address"`
		Balance int64  `json:"balance"`
	}
	if err := n.getJSON(ctx, "/addresses/balance/"+url.PathEscape(address), &payload, nil); err != nil {
		return 0, err
	}
	return payload.Balance, nil
}

// Broadcast submits a signed transaction to the node and returns its id.
func (n *NodeClient) Broadcast(ctx context.Context, tx *Transaction) (string, error) {
	body, err := json.Marshal(tx)
	if err != nil {
		return "", apperrors.Wrap(ErrBroadcast, "encode transaction")
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		n.baseURL+"/transactions/broadcast",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", apperrors.Wrap(ErrBroadcast, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(ErrBroadcast, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperrors.Wrap(ErrBroadcast, nodeErrorMessage(resp))
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperrors.Wrap(ErrBroadcast, "decode broadcast response")
	}
	return payload.ID, nil
}

// AwaitAcceptance polls the node until the transaction is accepted or the
// configured deadline passes.
func (n *NodeClient) AwaitAcceptance(ctx context.Context, txID string) error {
	deadline := time.NewTimer(n.txTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	path := "/transactions/info/" + url.PathEscape(txID)

	for {
		var payload struct {
			ID string `json:"id"`
		}
		err := n.getJSON(ctx, path, &payload, errTxPending)
		if err == nil {
			return nil
		}
		if !apperrors.Is(err, errTxPending) {
			return err
		}

		select {
		case <-ctx.Done():
			return apperrors.Wrap(ErrNotAccepted, ctx.Err().Error())
		case <-deadline.C:
			return ErrNotAccepted
		case <-ticker.C:
		}
	}
}

// errTxPending marks a transaction that is broadcast but not yet in a block.
var errTxPending = apperrors.New("transaction pending")

// getJSON performs a GET against the node and decodes the JSON response.
// A 404 maps to notFoundErr when provided, otherwise to a generic error.
func (n *NodeClient) getJSON(ctx context.Context, path string, out any, notFoundErr error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build node request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("node request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound && notFoundErr != nil {
		return notFoundErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("node returned status %d: %s", resp.StatusCode, nodeErrorMessage(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode node response: %w", err)
	}
	return nil
}

// nodeErrorMessage extracts the node's error message from a non-2xx response.
func nodeErrorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return "status " + strconv.Itoa(resp.StatusCode)
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(raw)
}
