// Package ledger provides the narrow capability through which the rest of
// the scheduler talks to the Stellar-compatible ledger: fetching claimable
// balances and account sequence numbers, and submitting signed transaction
// blobs. It is pure I/O — no retry policy lives here, mirroring the
// teacher's modules.Wallet-style capability interfaces that leave policy to
// their callers.
package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/threefoldtech/piclaim/types"
)

// Client is the capability consumed by the rest of the scheduler. A single
// implementation, HTTPClient, talks to the real ledger; tests supply their
// own in-memory fakes.
type Client interface {
	// ClaimableBalances returns every claimable balance the ledger reports
	// for the given claimant address.
	ClaimableBalances(ctx context.Context, address string) ([]Balance, error)
	// Sequence returns the current sequence number of the given account.
	Sequence(ctx context.Context, address string) (uint64, error)
	// Submit posts a signed transaction blob and reports the outcome.
	Submit(ctx context.Context, blob []byte) (SubmitResult, error)
}

// Balance is the ledger's wire shape for a single claimable balance record.
type Balance struct {
	ID        string     `json:"id"`
	Amount    string     `json:"amount"`
	Claimants []Claimant `json:"claimants"`
}

// Claimant is a single claimant entry of a claimable balance, carrying its
// raw predicate tree for types.ParsePredicate to interpret.
type Claimant struct {
	Destination string          `json:"destination"`
	Predicate   json.RawMessage `json:"predicate"`
}

// SubmitResult is the ledger's response to a transaction submission.
type SubmitResult struct {
	Hash       string
	Successful bool
	// ResultCode is the structured `extras.result_codes.transaction` value
	// on rejection, empty on success. Callers classify it via
	// ClassifyResultCode instead of sniffing an error string (spec §9).
	ResultCode string
}

// balancesResponse mirrors the horizon-style embedded-records envelope.
type balancesResponse struct {
	Embedded struct {
		Records []Balance `json:"records"`
	} `json:"_embedded"`
}

// accountResponse mirrors the horizon-style account response.
type accountResponse struct {
	Sequence string `json:"sequence"`
}

// submitResponse mirrors the horizon-style transaction submission response.
type submitResponse struct {
	Hash       string `json:"hash"`
	Successful bool   `json:"successful"`
	Extras     struct {
		ResultCodes struct {
			Transaction string `json:"transaction"`
		} `json:"result_codes"`
	} `json:"extras"`
}

// HTTPClient is the real Client implementation, talking to a horizon-style
// REST endpoint over HTTP with a whitelisted user agent, in the style of
// the teacher's api.HttpGET/HttpPOST helpers.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPClient builds an HTTPClient with the given base URL and request
// timeout. A timeout of zero uses a sane 15s default (spec §5).
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

const userAgent = "piclaimd-agent"

func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return c.HTTP.Do(req)
}

// ClaimableBalances implements Client.
func (c *HTTPClient) ClaimableBalances(ctx context.Context, address string) ([]Balance, error) {
	url := fmt.Sprintf("%s/claimable_balances/?claimant=%s", c.BaseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("ledger: claimable_balances: unexpected status %d", resp.StatusCode)
	}
	var body balancesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("ledger: claimable_balances: decode: %w", err)
	}
	return body.Embedded.Records, nil
}

// Sequence implements Client.
func (c *HTTPClient) Sequence(ctx context.Context, address string) (uint64, error) {
	url := fmt.Sprintf("%s/accounts/%s", c.BaseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return 0, fmt.Errorf("ledger: accounts: unexpected status %d", resp.StatusCode)
	}
	var body accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("ledger: accounts: decode: %w", err)
	}
	seq, err := strconv.ParseUint(body.Sequence, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ledger: accounts: malformed sequence %q: %w", body.Sequence, err)
	}
	return seq, nil
}

// Submit implements Client.
func (c *HTTPClient) Submit(ctx context.Context, blob []byte) (SubmitResult, error) {
	url := fmt.Sprintf("%s/transactions", c.BaseURL)
	payload, err := json.Marshal(struct {
		Tx string `json:"tx"`
	}{Tx: base64.StdEncoding.EncodeToString(blob)})
	if err != nil {
		return SubmitResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return SubmitResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return SubmitResult{}, err
	}
	defer resp.Body.Close()

	var body submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return SubmitResult{}, fmt.Errorf("ledger: transactions: decode: %w", err)
	}
	if resp.StatusCode/100 == 2 {
		return SubmitResult{Hash: body.Hash, Successful: body.Successful}, nil
	}
	return SubmitResult{
		Hash:       body.Hash,
		Successful: false,
		ResultCode: body.Extras.ResultCodes.Transaction,
	}, nil
}

// ClassifyResultCode maps a ledger result_codes.transaction string into the
// scheduler's ErrKind taxonomy, replacing the string-sniffing anti-pattern
// named in spec.md §9.
func ClassifyResultCode(code string) types.ErrKind {
	switch code {
	case "tx_bad_seq":
		return types.KindBadSequence
	case "tx_bad_auth", "tx_bad_auth_extra":
		return types.KindBadAuth
	case "":
		return types.KindTransient
	default:
		return types.KindLogic
	}
}
