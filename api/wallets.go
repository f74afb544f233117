package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/threefoldtech/piclaim/crypto"
	"github.com/threefoldtech/piclaim/registry"
	"github.com/threefoldtech/piclaim/types"
)

// monitorWalletRequest is the wire shape of POST /monitor-wallet. Secret
// is the base64 encoding of the raw Ed25519 expanded private key bytes
// (crypto.SecretKey) — already-validated per spec.md §1's "Credential
// intake ... performed by clients; the scheduler receives
// already-validated (address, secret, destination) tuples."
type monitorWalletRequest struct {
	Address     string `json:"address"`
	Secret      string `json:"secret"`
	Destination string `json:"destination"`
}

type monitorWalletResponse struct {
	Wallet types.Public `json:"wallet"`
}

func (a *API) monitorWalletHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req monitorWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, Error{"could not parse request body: " + err.Error()}, http.StatusBadRequest)
		return
	}

	sk, err := decodeSecret(req.Secret)
	if err != nil {
		WriteError(w, Error{err.Error()}, http.StatusBadRequest)
		return
	}

	wallet, err := a.supervisor.EnrollWallet(req.Address, sk, req.Destination)
	switch {
	case errors.Is(err, registry.ErrAuthMismatch):
		WriteError(w, Error{"secret does not derive to address"}, http.StatusBadRequest)
		return
	case errors.Is(err, registry.ErrDuplicateAddress):
		WriteError(w, Error{"address is already enrolled"}, http.StatusConflict)
		return
	case err != nil:
		WriteError(w, Error{err.Error()}, http.StatusInternalServerError)
		return
	}

	WriteJSONStatus(w, monitorWalletResponse{Wallet: wallet.Public()}, http.StatusCreated)
}

func decodeSecret(encoded string) (crypto.SecretKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return crypto.SecretKey{}, errors.New("secret must be base64-encoded")
	}
	var sk crypto.SecretKey
	if len(raw) != len(sk) {
		return crypto.SecretKey{}, errors.New("secret has the wrong length")
	}
	copy(sk[:], raw)
	return sk, nil
}

type walletsResponse struct {
	Wallets []types.Public `json:"wallets"`
}

func (a *API) walletsHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	wallets := a.supervisor.Wallets.List()
	out := make([]types.Public, 0, len(wallets))
	for _, wlt := range wallets {
		out = append(out, wlt.Public())
	}
	WriteJSON(w, walletsResponse{Wallets: out})
}

func (a *API) stopMonitoringHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := types.WalletID(ps.ByName("walletId"))
	if err := a.supervisor.StopMonitoring(id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			WriteError(w, Error{"wallet not found"}, http.StatusNotFound)
			return
		}
		WriteError(w, Error{err.Error()}, http.StatusInternalServerError)
		return
	}
	WriteJSON(w, struct{}{})
}
