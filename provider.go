/*
Copyright 2025 Kobpay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package wpayz

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	pkgerrors "github.com/pkg/errors"

	"github.com/kobpay/wpayz/internal/request"
)

// ProviderParams are the per-agent parameters supplied with every client
// request. The secret key signs the assertion sent to the provider; it is
// never persisted.
type ProviderParams struct {
	AgentID     string `json:"agentId"`
	Site        string `json:"site"`
	GatewayID   string `json:"gatewayId"`
	SecretKey   string `json:"secretKey"`
	CallbackURL string `json:"callbackURL"`
	ResultURL   string `json:"resultURL"`
}

// assertionClaims is the signed assertion the provider requires on every
// call: agent identifier plus end-user identifier, HS256, one hour expiry.
type assertionClaims struct {
	AgentID string `json:"agentId"`
	UserID  string `json:"userId"`
	jwt.RegisteredClaims
}

// SignAssertion builds the short-lived signed assertion keyed by the
// per-agent secret.
func SignAssertion(agentID, userID, secretKey string) (string, error) {
	now := time.Now()
	claims := assertionClaims{
		AgentID: agentID,
		UserID:  userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", pkgerrors.Wrap(err, "sign assertion")
	}
	return signed, nil
}

// QRCreateRequest is the create-QR payload sent to the provider.
type QRCreateRequest struct {
	Amount      float64 `json:"amount"`
	RedirectURL string  `json:"redirectUrl"`
	AccountNo   string  `json:"accountNo"`
	AccountName string  `json:"accountName"`
	BankCode    string  `json:"bankCode"`
}

// WithdrawSubmitRequest is the submit-withdrawal payload sent to the provider.
type WithdrawSubmitRequest struct {
	ToAccountNo   string  `json:"toAccountNo"`
	ToAccountName string  `json:"toAccountName"`
	ToBankCode    string  `json:"toBankCode"`
	Amount        float64 `json:"amount"`
	CallbackURL   string  `json:"callbackUrl"`
}

// ProviderData is the inner data object of every provider envelope.
type ProviderData struct {
	PaymentID     string  `json:"paymentId"`
	TransactionID string  `json:"transactionId"`
	PayURL        string  `json:"payUrl"`
	Amount        float64 `json:"amount"`
	Balance       float64 `json:"balance"`
	Message       string  `json:"message"`
}

// ProviderResponse is the provider's response envelope. A StatusCode other
// than 200 means the provider explicitly rejected the request; that outcome
// is terminal and must not be retried with the same payload.
type ProviderResponse struct {
	StatusCode int          `json:"statusCode"`
	Data       ProviderData `json:"data"`
}

// Rejected reports whether the provider declined the request.
func (r *ProviderResponse) Rejected() bool {
	return r.StatusCode != http.StatusOK
}

// RejectionMessage returns the provider's error detail, with a fallback.
func (r *ProviderResponse) RejectionMessage(fallback string) string {
	if r.Data.Message != "" {
		return r.Data.Message
	}
	return fallback
}

// TransactionRange bounds a provider transaction query.
type TransactionRange struct {
	StartTime time.Time
	EndTime   time.Time
	UserID    string
	Status    string
}

// ProviderTransactionsResponse wraps the provider's transaction listings.
type ProviderTransactionsResponse struct {
	StatusCode int                      `json:"statusCode"`
	Data       []map[string]interface{} `json:"data"`
}

// ProviderClient performs the provider operations. Each call is a single
// request/response exchange with a bounded timeout and no internal retry;
// a transport failure is surfaced to the caller, and a fresh attempt must
// go through a new lifecycle call rather than a blind resend.
type ProviderClient struct {
	apiHost string
	timeout time.Duration
}

func NewProviderClient(apiHost string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{apiHost: apiHost, timeout: timeout}
}

// CreateQR asks the provider for a deposit QR. A nil error with a non-200
// envelope StatusCode is a provider rejection, not a transport failure.
func (p *ProviderClient) CreateQR(ctx context.Context, params ProviderParams, userID string, payload QRCreateRequest) (*ProviderResponse, error) {
	var resp ProviderResponse
	err := p.call(ctx, http.MethodPost, "/api/wpayz/qrcode", params, userID, payload, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchBalance fetches the agent's balance at the provider.
func (p *ProviderClient) FetchBalance(ctx context.Context, params ProviderParams) (*ProviderResponse, error) {
	var resp ProviderResponse
	err := p.call(ctx, http.MethodGet, "/api/wpayz/balance", params, "", nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitWithdrawal submits a payout order to the provider.
func (p *ProviderClient) SubmitWithdrawal(ctx context.Context, params ProviderParams, userID string, payload WithdrawSubmitRequest) (*ProviderResponse, error) {
	var resp ProviderResponse
	err := p.call(ctx, http.MethodPost, "/api/wpayz/withdraw", params, userID, payload, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryDepositTransaction fetches a single deposit transaction by provider id.
func (p *ProviderClient) QueryDepositTransaction(ctx context.Context, params ProviderParams, id string) (*ProviderResponse, error) {
	var resp ProviderResponse
	err := p.call(ctx, http.MethodGet, "/api/wpayz/deposit/transactions/"+url.PathEscape(id), params, "", nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryWithdrawTransaction fetches a single withdraw transaction by provider id.
func (p *ProviderClient) QueryWithdrawTransaction(ctx context.Context, params ProviderParams, id string) (*ProviderResponse, error) {
	var resp ProviderResponse
	err := p.call(ctx, http.MethodGet, "/api/wpayz/withdraw/transactions/"+url.PathEscape(id), params, "", nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryDepositTransactions lists deposit transactions in a date range.
func (p *ProviderClient) QueryDepositTransactions(ctx context.Context, params ProviderParams, rng TransactionRange) (*ProviderTransactionsResponse, error) {
	var resp ProviderTransactionsResponse
	err := p.call(ctx, http.MethodGet, "/api/wpayz/deposit/transactions?"+rangeQuery(rng), params, "", nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryWithdrawTransactions lists withdraw transactions in a date range.
func (p *ProviderClient) QueryWithdrawTransactions(ctx context.Context, params ProviderParams, rng TransactionRange) (*ProviderTransactionsResponse, error) {
	var resp ProviderTransactionsResponse
	err := p.call(ctx, http.MethodGet, "/api/wpayz/withdraw/transactions?"+rangeQuery(rng), params, "", nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func rangeQuery(rng TransactionRange) string {
	query := url.Values{}
	query.Set("sDate", rng.StartTime.Format("2006-01-02"))
	query.Set("eDate", rng.EndTime.Format("2006-01-02"))
	query.Set("userId", rng.UserID)
	query.Set("status", rng.Status)
	return query.Encode()
}

func (p *ProviderClient) call(ctx context.Context, method, path string, params ProviderParams, userID string, payload, response interface{}) error {
	assertion, err := SignAssertion(params.AgentID, userID, params.SecretKey)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var req *http.Request
	if payload != nil {
		body, err := request.ToJsonReq(payload)
		if err != nil {
			return pkgerrors.Wrap(err, "encode provider payload")
		}
		req, err = http.NewRequestWithContext(ctx, method, p.apiHost+path, body)
		if err != nil {
			return pkgerrors.Wrap(err, "build provider request")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, p.apiHost+path, nil)
		if err != nil {
			return pkgerrors.Wrap(err, "build provider request")
		}
	}
	req.Header.Set("Authorization", assertion)

	resp, err := request.Call(req, response)
	if err != nil {
		return pkgerrors.Wrap(err, "provider call")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned unexpected status %d", resp.StatusCode)
	}
	return nil
}
