package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/threefoldtech/piclaim/types"
)

func TestHTTPClientClaimableBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/claimable_balances/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("claimant"); got != "GADDRESS" {
			t.Fatalf("expected claimant=GADDRESS, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(balancesResponse{
			Embedded: struct {
				Records []Balance `json:"records"`
			}{Records: []Balance{{ID: "bal-1", Amount: "10.0000000"}}},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	records, err := c.ClaimableBalances(context.Background(), "GADDRESS")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].ID != "bal-1" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestHTTPClientClaimableBalancesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	if _, err := c.ClaimableBalances(context.Background(), "GADDRESS"); err == nil {
		t.Fatal("expected a non-2xx status to produce an error")
	}
}

func TestHTTPClientSequence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(accountResponse{Sequence: "42"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	seq, err := c.Sequence(context.Background(), "GADDRESS")
	if err != nil {
		t.Fatal(err)
	}
	if seq != 42 {
		t.Fatalf("expected sequence 42, got %d", seq)
	}
}

func TestHTTPClientSequenceMalformedIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(accountResponse{Sequence: "not-a-number"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	if _, err := c.Sequence(context.Background(), "GADDRESS"); err == nil {
		t.Fatal("expected a malformed sequence to produce an error")
	}
}

func TestHTTPClientSubmitSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Tx string `json:"tx"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Tx == "" {
			t.Fatal("expected the submitted blob to be base64-encoded in the tx field")
		}
		json.NewEncoder(w).Encode(submitResponse{Hash: "abc123", Successful: true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	result, err := c.Submit(context.Background(), []byte("a transaction envelope"))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Successful || result.Hash != "abc123" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPClientSubmitFailureReportsResultCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp submitResponse
		resp.Extras.ResultCodes.Transaction = "tx_bad_seq"
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	result, err := c.Submit(context.Background(), []byte("blob"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Successful {
		t.Fatal("expected Successful to be false on a rejected submission")
	}
	if result.ResultCode != "tx_bad_seq" {
		t.Fatalf("expected result code tx_bad_seq, got %q", result.ResultCode)
	}
}

func TestClassifyResultCode(t *testing.T) {
	cases := map[string]types.ErrKind{
		"tx_bad_seq":          types.KindBadSequence,
		"tx_bad_auth":         types.KindBadAuth,
		"tx_bad_auth_extra":   types.KindBadAuth,
		"":                    types.KindTransient,
		"tx_insufficient_fee": types.KindLogic,
	}
	for code, want := range cases {
		if got := ClassifyResultCode(code); got != want {
			t.Fatalf("ClassifyResultCode(%q) = %v, want %v", code, got, want)
		}
	}
}
