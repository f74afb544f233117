package api

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (a *API) healthHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	WriteJSON(w, healthResponse{Status: "ok", Timestamp: a.clk.Now()})
}
