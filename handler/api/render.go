package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oxtoacart/bpool"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/ledger"
	"github.com/pandodao/vault/program/vault"
)

// Error is the body of every failed request.
type Error struct {
	// Code is the vault program error code, zero for runtime errors.
	Code    uint32 `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
	// Instruction is the index of the failing instruction, if any.
	Instruction *int `json:"instruction,omitempty"`
	// Transaction is the record of a transaction that executed and failed.
	Transaction *core.Transaction `json:"transaction,omitempty"`
}

type ErrorResponse struct {
	Error *Error `json:"error"`
}

const (
	NameBadRequest = "BadRequest"
	NameNotFound   = "NotFound"
	NameInternal   = "Internal"
	// NameProgramError marks failures raised by a program outside the
	// known taxonomies.
	NameProgramError = "ProgramError"
)

var bufPool = bpool.NewBufferPool(64)

func renderJSON(w http.ResponseWriter, status int, v any) {
	buf := bufPool.Get()
	defer bufPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderBadRequest(w http.ResponseWriter, msg string) {
	renderJSON(w, http.StatusBadRequest, ErrorResponse{Error: &Error{Name: NameBadRequest, Message: msg}})
}

func renderNotFound(w http.ResponseWriter, msg string) {
	renderJSON(w, http.StatusNotFound, ErrorResponse{Error: &Error{Name: NameNotFound, Message: msg}})
}

// renderError maps execution errors to status codes: program and runtime
// rule failures are 422, malformed or stale transactions 400, duplicates 409.
func (s *Server) renderError(w http.ResponseWriter, err error, record *core.Transaction) {
	e := &Error{Message: err.Error(), Transaction: record}

	var ie *ledger.InstructionError
	if errors.As(err, &ie) {
		index := ie.Index
		e.Instruction = &index
	}

	status := http.StatusUnprocessableEntity
	if code, ok := vault.AsError(err); ok {
		e.Code = code.Code()
		e.Name = code.Name()
		renderJSON(w, status, ErrorResponse{Error: e})
		return
	}

	sentinel := ledger.Sentinel(err)
	switch sentinel {
	case nil:
		if record == nil {
			s.logger.Error("request failed", "err", err)
			status = http.StatusInternalServerError
			e.Name = NameInternal
			break
		}

		e.Name = NameProgramError
	case ledger.ErrAlreadyProcessed:
		status = http.StatusConflict
	case ledger.ErrInvalidTransaction, ledger.ErrSignatureFailure, ledger.ErrBlockhashNotFound, ledger.ErrFaucetLimit:
		status = http.StatusBadRequest
	case ledger.ErrFaucetDisabled:
		status = http.StatusForbidden
	}

	if sentinel != nil {
		e.Name = sentinel.Error()
	}

	renderJSON(w, status, ErrorResponse{Error: e})
}
