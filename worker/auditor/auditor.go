// Package auditor walks every vault state owned by the program and checks
// that custody still holds: each state sits at its derived address, and each
// vault keeps at least the rent floor. The last full pass is stored as a
// core.AuditReport.
package auditor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/pda"
	"github.com/pandodao/vault/program/vault"
	"github.com/pandodao/vault/rent"
	"github.com/pandodao/vault/store"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	ProgramID string `valid:"required"`
	Rent      rent.Rent
	// PageSize is the number of states audited per step.
	PageSize int `valid:"required"`
	// Concurrency bounds the vault lookups of one page.
	Concurrency int `valid:"required"`
	Interval    time.Duration `valid:"required"`
}

// cursor is the in-progress pass, persisted between pages so a restarted
// worker resumes where it stopped.
type cursor struct {
	After  string            `json:"after"`
	Report *core.AuditReport `json:"report"`
}

type Auditor struct {
	accounts   core.AccountStore
	properties core.PropertyStore
	logger     *slog.Logger
	programID  solana.PublicKey
	cfg        Config
}

func New(
	accounts core.AccountStore,
	properties core.PropertyStore,
	logger *slog.Logger,
	cfg Config,
) *Auditor {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Auditor{
		accounts:   accounts,
		properties: properties,
		logger:     logger.With("worker", "auditor"),
		programID:  solana.MustPublicKeyFromBase58(cfg.ProgramID),
		cfg:        cfg,
	}
}

func (w *Auditor) Run(ctx context.Context) error {
	w.logger.Info("auditor start")

	for {
		dur := w.cfg.Interval
		if done, err := w.Step(ctx); err == nil && !done {
			dur = 0
		} else if err != nil {
			dur = time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
		}
	}
}

// Audit runs one complete pass and returns its report.
func (w *Auditor) Audit(ctx context.Context) (*core.AuditReport, error) {
	for {
		done, err := w.Step(ctx)
		if err != nil {
			return nil, err
		}

		if done {
			break
		}
	}

	var report core.AuditReport
	if err := w.properties.Get(ctx, core.PropertyAuditReport, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

// Step audits the next page of states. It reports done once the pass
// reached the last state and its report was published.
func (w *Auditor) Step(ctx context.Context) (bool, error) {
	var c cursor
	if err := w.properties.Get(ctx, core.PropertyAuditCursor, &c); err != nil {
		w.logger.Error("properties.Get", "err", err)
		return false, err
	}

	if c.Report == nil {
		c.Report = &core.AuditReport{StartedAt: time.Now()}
	}

	states, err := w.accounts.ListOwner(ctx, w.programID, c.After, w.cfg.PageSize)
	if err != nil {
		w.logger.Error("accounts.ListOwner", "err", err)
		return false, err
	}

	if err := w.check(ctx, states, c.Report); err != nil {
		return false, err
	}

	if len(states) == w.cfg.PageSize {
		c.After = states[len(states)-1].Address.String()
		if err := w.properties.Set(ctx, core.PropertyAuditCursor, c); err != nil {
			w.logger.Error("properties.Set", "err", err)
			return false, err
		}

		return false, nil
	}

	report := c.Report
	report.FinishedAt = time.Now()
	if err := w.properties.Set(ctx, core.PropertyAuditReport, report); err != nil {
		w.logger.Error("properties.Set", "err", err)
		return false, err
	}

	if err := w.properties.Set(ctx, core.PropertyAuditCursor, cursor{}); err != nil {
		w.logger.Error("properties.Set", "err", err)
		return false, err
	}

	metricStates.Set(float64(report.States))
	metricLockedLamports.Set(float64(report.LockedLamports))
	metricViolations.Set(float64(len(report.Violations)))

	w.logger.Info("audit finished",
		"states", report.States,
		"locked", lamports.Format(report.LockedLamports),
		"violations", len(report.Violations),
		"dur", report.FinishedAt.Sub(report.StartedAt),
	)

	return true, nil
}

func (w *Auditor) check(ctx context.Context, states []*core.Account, report *core.AuditReport) error {
	var (
		mux    sync.Mutex
		g, gtx = errgroup.WithContext(ctx)
	)

	g.SetLimit(w.cfg.Concurrency)

	for _, account := range states {
		g.Go(func() error {
			balance, violation, err := w.checkState(gtx, account)
			if err != nil {
				return err
			}

			mux.Lock()
			defer mux.Unlock()

			report.States++
			if report.LockedLamports, err = lamports.Add(report.LockedLamports, balance); err != nil {
				return err
			}

			if violation != nil {
				w.logger.Error("vault violation", "state", violation.State, "vault", violation.Vault, "reason", violation.Reason)
				report.Violations = append(report.Violations, violation)
			}

			return nil
		})
	}

	return g.Wait()
}

// checkState returns the lamports locked in the vault of a state account and
// the violation it breaks, if any.
func (w *Auditor) checkState(ctx context.Context, account *core.Account) (uint64, *core.AuditViolation, error) {
	violation := func(vaultAddress solana.PublicKey, format string, args ...any) *core.AuditViolation {
		v := &core.AuditViolation{State: account.Address.String(), Reason: fmt.Sprintf(format, args...)}
		if !vaultAddress.IsZero() {
			v.Vault = vaultAddress.String()
		}

		return v
	}

	state, err := vault.DecodeState(account.Data)
	if err != nil {
		return 0, violation(solana.PublicKey{}, "undecodable state: %v", err), nil
	}

	vaultAddress, err := pda.VaultAddress(w.programID, account.Address, state.VaultBump)
	if err != nil {
		return 0, violation(solana.PublicKey{}, "vault bump %d: %v", state.VaultBump, err), nil
	}

	if err := pda.Verify(w.programID, state.Owner, state.StateBump, state.VaultBump, account.Address, vaultAddress); err != nil {
		return 0, violation(vaultAddress, "%v", err), nil
	}

	if floor := w.cfg.Rent.MinimumBalance(vault.StateSize); account.Lamports < floor {
		return 0, violation(vaultAddress, "state holds %d, floor %d", account.Lamports, floor), nil
	}

	var balance uint64
	v, err := w.accounts.Find(ctx, vaultAddress)
	switch {
	case err == nil:
		balance = v.Lamports
		if !v.Owner.Equals(solana.SystemProgramID) {
			return balance, violation(vaultAddress, "vault owned by %s", v.Owner), nil
		}
	case store.IsErrNotFound(err):
	default:
		w.logger.Error("accounts.Find", "vault", vaultAddress, "err", err)
		return 0, nil, err
	}

	if floor := w.cfg.Rent.MinimumBalance(0); balance < floor {
		return balance, violation(vaultAddress, "vault holds %d, floor %d", balance, floor), nil
	}

	return balance, nil, nil
}
