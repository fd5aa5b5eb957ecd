// Package client talks to the vault HTTP API.
package client

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-resty/resty/v2"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/handler/api"
	"github.com/pandodao/vault/ledger"
	"github.com/pandodao/vault/program/vault"
)

type Client struct {
	http *resty.Client
}

// New returns a client for the server at endpoint, e.g. http://localhost:8080.
func New(endpoint string) *Client {
	c := resty.New().
		SetBaseURL(endpoint+"/api").
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json")

	return &Client{http: c}
}

// Error is a failed API call. It unwraps to the vault program error, the
// ledger sentinel or sql.ErrNoRows it stands for.
type Error struct {
	StatusCode int
	Body       *api.Error
	cause      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Body.Name, e.Body.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func decodeError(resp *resty.Response) error {
	body, ok := resp.Error().(*api.ErrorResponse)
	if !ok || body.Error == nil {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
	}

	e := &Error{StatusCode: resp.StatusCode(), Body: body.Error}
	switch {
	case body.Error.Code != 0:
		if code, ok := vault.ErrorFromCode(body.Error.Code); ok {
			e.cause = code
		}
	case resp.StatusCode() == http.StatusNotFound:
		e.cause = sql.ErrNoRows
	default:
		e.cause = ledger.SentinelFromMessage(body.Error.Name)
	}

	return e
}

func do[T any](ctx context.Context, c *Client, method, path string, body any, query map[string]string) (*T, error) {
	var out T
	req := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&api.ErrorResponse{}).
		SetQueryParams(query)

	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, decodeError(resp)
	}

	return &out, nil
}

func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	out, err := do[api.Blockhash](ctx, c, http.MethodGet, "/blockhash", nil, nil)
	if err != nil {
		return solana.Hash{}, 0, err
	}

	hash, err := solana.HashFromBase58(out.Blockhash)
	return hash, out.Slot, err
}

// MinimumBalance returns the rent-exemption floor for size bytes of data.
func (c *Client) MinimumBalance(ctx context.Context, size int) (uint64, error) {
	out, err := do[api.Rent](ctx, c, http.MethodGet, "/rent/"+strconv.Itoa(size), nil, nil)
	if err != nil {
		return 0, err
	}

	return out.Lamports, nil
}

func (c *Client) Account(ctx context.Context, address solana.PublicKey) (*api.Account, error) {
	return do[api.Account](ctx, c, http.MethodGet, "/accounts/"+address.String(), nil, nil)
}

// Balance returns the lamports held by address, zero when it does not exist.
func (c *Client) Balance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	account, err := c.Account(ctx, address)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.StatusCode == http.StatusNotFound {
			return 0, nil
		}

		return 0, err
	}

	return account.Lamports, nil
}

func (c *Client) Vault(ctx context.Context, owner solana.PublicKey) (*api.Vault, error) {
	return do[api.Vault](ctx, c, http.MethodGet, "/vaults/"+owner.String(), nil, nil)
}

func (c *Client) Airdrop(ctx context.Context, address solana.PublicKey, amount uint64) (*core.Transaction, error) {
	return do[core.Transaction](ctx, c, http.MethodPost, "/airdrop", api.AirdropRequest{
		Address:  address.String(),
		Lamports: amount,
	}, nil)
}

// SendTransaction submits a signed transaction. When it executed and failed
// the failed record is returned along with the error.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (*core.Transaction, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, err
	}

	record, err := do[core.Transaction](ctx, c, http.MethodPost, "/transactions", api.SendTransactionRequest{
		Transaction: base64.StdEncoding.EncodeToString(raw),
	}, nil)

	var e *Error
	if errors.As(err, &e) {
		return e.Body.Transaction, err
	}

	return record, err
}

func (c *Client) Transaction(ctx context.Context, sig solana.Signature) (*core.Transaction, error) {
	return do[core.Transaction](ctx, c, http.MethodGet, "/transactions/"+sig.String(), nil, nil)
}

func (c *Client) Transactions(ctx context.Context, payer solana.PublicKey, offset uint64, limit int) ([]*core.Transaction, error) {
	out, err := do[[]*core.Transaction](ctx, c, http.MethodGet, "/accounts/"+payer.String()+"/transactions", nil, map[string]string{
		"offset": strconv.FormatUint(offset, 10),
		"limit":  strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}

	return *out, nil
}

// Stats returns the last audit report.
func (c *Client) Stats(ctx context.Context) (*core.AuditReport, error) {
	return do[core.AuditReport](ctx, c, http.MethodGet, "/stats", nil, nil)
}
