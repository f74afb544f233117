package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/threefoldtech/piclaim/types"
)

type logsResponse struct {
	Logs []types.LogRecord `json:"logs"`
}

func (a *API) logsHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	WriteJSON(w, logsResponse{Logs: a.supervisor.Logs.Snapshot()})
}

func (a *API) clearLogsHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	a.supervisor.Logs.Clear()
	WriteSuccess(w)
}
