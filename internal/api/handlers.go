package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/rs/zerolog/log"
)

// APIResponse represents the standard API response format
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OutputResponse describes one output
type OutputResponse struct {
	Slot   int    `json:"slot"`
	Name   string `json:"name"`
	State  string `json:"state"`
	Offers string `json:"offers"`
}

// StatusResponse describes the whole device
type StatusResponse struct {
	Status  int32            `json:"status"`
	Outputs []OutputResponse `json:"outputs"`
}

func (s *Server) sendResponse(w http.ResponseWriter, resp APIResponse, httpCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, httpCode int) {
	s.sendResponse(w, APIResponse{Status: "error", Message: message}, httpCode)
}

func (s *Server) statusResponse() StatusResponse {
	snap := s.source.Snapshot()
	resp := StatusResponse{
		Status:  int32(snap.Status),
		Outputs: make([]OutputResponse, len(snap.Names)),
	}
	for i, name := range snap.Names {
		state := "off"
		if snap.States[i] {
			state = "on"
		}
		resp.Outputs[i] = OutputResponse{
			Slot:   i + 1,
			Name:   name,
			State:  state,
			Offers: snap.Status.Offers(protocol.OutputID(i)).String(),
		}
	}
	return resp
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.sendResponse(w, APIResponse{Status: "ok"}, http.StatusOK)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.sendResponse(w, APIResponse{Status: "ok", Data: s.statusResponse()}, http.StatusOK)
}

func (s *Server) outputHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	for _, out := range s.statusResponse().Outputs {
		if out.Name == name {
			s.sendResponse(w, APIResponse{Status: "ok", Data: out}, http.StatusOK)
			return
		}
	}
	s.sendError(w, fmt.Sprintf("Unknown output: %s", name), http.StatusNotFound)
}
