package api

import (
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/ledger"
)

type Config struct {
	ProgramID string `valid:"required"`
}

func New(
	ledger *ledger.Ledger,
	properties core.PropertyStore,
	logger *slog.Logger,
	cfg Config,
) *Server {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Server{
		ledger:     ledger,
		properties: properties,
		logger:     logger.With("server", "api"),
		programID:  solana.MustPublicKeyFromBase58(cfg.ProgramID),
	}
}

type Server struct {
	ledger     *ledger.Ledger
	properties core.PropertyStore
	logger     *slog.Logger
	programID  solana.PublicKey
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/blockhash", s.getBlockhash)
	r.Get("/rent/{size}", s.getRent)
	r.Get("/stats", s.getStats)
	r.Get("/errors", s.listErrors)

	r.Route("/accounts/{address}", func(r chi.Router) {
		r.Get("/", s.getAccount)
		r.Get("/transactions", s.listTransactions)
	})

	r.Get("/vaults/{owner}", s.getVault)

	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", s.sendTransaction)
		r.Get("/{signature}", s.getTransaction)
	})

	r.Post("/airdrop", s.airdrop)

	return r
}
