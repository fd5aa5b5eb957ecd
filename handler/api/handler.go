package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/pandodao/generic"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/pda"
	"github.com/pandodao/vault/program/vault"
	"github.com/pandodao/vault/store"
)

const maxPageSize = 100

func (s *Server) getBlockhash(w http.ResponseWriter, r *http.Request) {
	hash, slot := s.ledger.LatestBlockhash()
	renderJSON(w, http.StatusOK, Blockhash{
		Blockhash:       hash.String(),
		Slot:            slot,
		FeePerSignature: s.ledger.FeePerSignature(),
	})
}

func (s *Server) getRent(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.Atoi(chi.URLParam(r, "size"))
	if err != nil || size < 0 {
		renderBadRequest(w, "invalid size")
		return
	}

	minimum := s.ledger.Rent().MinimumBalance(size)
	renderJSON(w, http.StatusOK, Rent{Size: size, Lamports: minimum, SOL: lamports.Format(minimum)})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	var report core.AuditReport
	if err := s.properties.Get(r.Context(), core.PropertyAuditReport, &report); err != nil {
		s.logger.Error("properties.Get", "err", err)
		s.renderError(w, err, nil)
		return
	}

	renderJSON(w, http.StatusOK, report)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	address, err := solana.PublicKeyFromBase58(chi.URLParam(r, "address"))
	if err != nil {
		renderBadRequest(w, "invalid address")
		return
	}

	account, err := s.ledger.Account(r.Context(), address)
	if err != nil {
		if store.IsErrNotFound(err) {
			renderNotFound(w, "account not found")
			return
		}

		s.logger.Error("ledger.Account", "err", err)
		s.renderError(w, err, nil)
		return
	}

	renderJSON(w, http.StatusOK, viewAccount(account))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	payer, err := solana.PublicKeyFromBase58(chi.URLParam(r, "address"))
	if err != nil {
		renderBadRequest(w, "invalid address")
		return
	}

	offset, _ := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	txs, err := s.ledger.Transactions(r.Context(), payer, offset, limit)
	if err != nil {
		s.logger.Error("ledger.Transactions", "err", err)
		s.renderError(w, err, nil)
		return
	}

	if txs == nil {
		txs = []*core.Transaction{}
	}

	renderJSON(w, http.StatusOK, txs)
}

func (s *Server) getVault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := solana.PublicKeyFromBase58(chi.URLParam(r, "owner"))
	if err != nil {
		renderBadRequest(w, "invalid owner")
		return
	}

	addrs, err := pda.Derive(s.programID, owner)
	if err != nil {
		s.renderError(w, err, nil)
		return
	}

	view := &Vault{
		Owner:     owner.String(),
		Status:    VaultStatusUninitialized,
		State:     addrs.State.String(),
		StateBump: addrs.StateBump,
		Vault:     addrs.Vault.String(),
		VaultBump: addrs.VaultBump,
		Floor:     s.ledger.Rent().MinimumBalance(0),
	}

	if state, err := s.ledger.Account(ctx, addrs.State); err == nil && state.Owner.Equals(s.programID) {
		view.Status = VaultStatusActive
		view.StateReserve = state.Lamports
	} else if err != nil && !store.IsErrNotFound(err) {
		s.logger.Error("ledger.Account", "err", err)
		s.renderError(w, err, nil)
		return
	}

	if view.Balance, err = s.ledger.Balance(ctx, addrs.Vault); err != nil {
		s.logger.Error("ledger.Balance", "err", err)
		s.renderError(w, err, nil)
		return
	}

	view.SOL = lamports.Format(view.Balance)
	if view.Balance > view.Floor {
		view.Withdrawable = view.Balance - view.Floor
	}

	renderJSON(w, http.StatusOK, view)
}

func (s *Server) sendTransaction(w http.ResponseWriter, r *http.Request) {
	var req SendTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, "invalid body")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Transaction)
	if err != nil {
		renderBadRequest(w, "transaction is not base64")
		return
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		renderBadRequest(w, "malformed transaction: "+err.Error())
		return
	}

	record, err := s.ledger.Submit(r.Context(), tx)
	if err != nil {
		s.logger.Debug("ledger.Submit", "err", err)
		s.renderError(w, err, record)
		return
	}

	renderJSON(w, http.StatusOK, record)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	sig, err := solana.SignatureFromBase58(chi.URLParam(r, "signature"))
	if err != nil {
		renderBadRequest(w, "invalid signature")
		return
	}

	tx, err := s.ledger.Transaction(r.Context(), sig)
	if err != nil {
		if store.IsErrNotFound(err) {
			renderNotFound(w, "transaction not found")
			return
		}

		s.logger.Error("ledger.Transaction", "err", err)
		s.renderError(w, err, nil)
		return
	}

	renderJSON(w, http.StatusOK, tx)
}

func (s *Server) airdrop(w http.ResponseWriter, r *http.Request) {
	var req AirdropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, "invalid body")
		return
	}

	address, err := solana.PublicKeyFromBase58(req.Address)
	if err != nil {
		renderBadRequest(w, "invalid address")
		return
	}

	amount := req.Lamports
	if amount == 0 && req.SOL != "" {
		if amount, err = lamports.ParseSOL(req.SOL); err != nil {
			renderBadRequest(w, err.Error())
			return
		}
	}

	record, err := s.ledger.Airdrop(r.Context(), address, amount)
	if err != nil {
		s.renderError(w, err, nil)
		return
	}

	renderJSON(w, http.StatusOK, record)
}

type ProgramError struct {
	Code    uint32 `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (s *Server) listErrors(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, generic.MapSlice(vault.Errors(), func(e vault.Error) ProgramError {
		return ProgramError{Code: e.Code(), Name: e.Name(), Message: e.Error()}
	}))
}
