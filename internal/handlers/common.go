package handlers

import (
	"github.com/hireflow/onboarding/internal/services"
)

// ErrorResponse is the error body returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	workflow *services.WorkflowService
	store    services.CandidateStore
)

// Init wires the handler package to its services. Must be called before
// the router is served.
func Init(w *services.WorkflowService, s services.CandidateStore) {
	workflow = w
	store = s
}
