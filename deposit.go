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
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/kobpay/wpayz/database"
	"github.com/kobpay/wpayz/internal/apierror"
	"github.com/kobpay/wpayz/model"
)

var tracer = otel.Tracer("wpayz.lifecycle")

const (
	// qrValidity is how long the provider keeps a payment QR scannable.
	qrValidity = 15 * time.Minute
	// expiryMargin is subtracted from the real expiry in responses so
	// callers stop offering the code before the provider invalidates it.
	expiryMargin = time.Minute
	// backdateWindow: a success callback arriving later than this after
	// record creation keeps the record's original creation time as its
	// settlement time.
	backdateWindow = 30 * time.Minute

	paymentMethodQR = "QR"
)

// expiryLocation is the provider's fixed business timezone.
var expiryLocation = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// PaymentRequest is a deposit request from the internal ledger.
type PaymentRequest struct {
	Username        string
	FullName        string
	AccountNo       string
	AccountBankCode string
	Amount          float64
	Fee             float64
	Params          ProviderParams
}

// PaymentResponse is returned to the ledger once the deposit is accepted.
type PaymentResponse struct {
	ID          string  `json:"id"`
	MerchantRef string  `json:"merchantRef"`
	SystemRef   string  `json:"systemRef"`
	Payee       string  `json:"payee"`
	PayAmount   float64 `json:"payAmount"`
	QrCode      string  `json:"qrCode"`
	ExpiredDate string  `json:"expiredDate"`
}

// OrderStatus is a deposit status lookup result.
type OrderStatus struct {
	CustomerID string  `json:"customerId"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
}

// BalanceResponse reports the agent's balances at the provider.
type BalanceResponse struct {
	DepositBalance  float64 `json:"depositBalance"`
	WithdrawBalance float64 `json:"withdrawBalance"`
	WithdrawPending float64 `json:"withdrawPending"`
}

// RequestPayment creates a PENDING deposit, asks the provider for a QR and
// finalizes the record with the resolved payment code and references. The
// record is persisted before the provider is contacted so an upstream
// failure still leaves an auditable row.
func (w *Wpayz) RequestPayment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	ctx, span := tracer.Start(ctx, "Requesting deposit payment")
	defer span.End()

	dpst := &model.Deposit{
		DepositID:     model.GenerateUUIDWithSuffix("dpst"),
		MerchantID:    req.Params.AgentID,
		AgentID:       req.Params.AgentID,
		Site:          req.Params.Site,
		CustomerID:    req.Username,
		Amount:        req.Amount,
		Callback:      req.Params.CallbackURL,
		GatewayID:     req.Params.GatewayID,
		PaymentMethod: paymentMethodQR,
		Status:        model.StatusPending,
		CreatedAt:     time.Now(),
	}
	dpst, err := w.datasource.CreateDeposit(ctx, dpst)
	if err != nil {
		span.RecordError(err)
		logrus.Errorf("ERROR saving deposit to db. %s", err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not create deposit", err)
	}

	payload := QRCreateRequest{
		Amount:      req.Amount,
		RedirectURL: req.Params.ResultURL,
		AccountNo:   req.AccountNo,
		AccountName: req.FullName,
		BankCode:    MapBankCode(req.AccountBankCode),
	}
	resp, err := w.provider.CreateQR(ctx, req.Params, req.Username, payload)
	if err != nil {
		span.RecordError(err)
		logrus.Errorf("deposit %s upstream error: %v", dpst.DepositID, err)
		return nil, apierror.NewAPIError(apierror.ErrUpstream, err.Error(), err)
	}

	if resp.Rejected() {
		message := resp.RejectionMessage("Payment creation failed")
		if err := w.datasource.MarkDepositFailed(ctx, dpst.DepositID, fmt.Sprintf("%d", resp.StatusCode), message); err != nil {
			logrus.Errorf("deposit %s could not be marked failed: %v", dpst.DepositID, err)
		}
		return nil, apierror.NewAPIError(apierror.ErrProviderRejected, message, message)
	}

	// The provider's synchronous response only carries a pay-page URL;
	// resolve the scannable code through the fallback chain.
	qrCode := resp.Data.PayURL
	if resp.Data.PayURL != "" {
		qrCode = w.qr.Resolve(ctx, resp.Data.PayURL)
		if !AmountMatchesQR(qrCode, req.Amount) {
			logrus.Warnf("deposit %s resolved QR declares a different amount", dpst.DepositID)
		}
	}

	payAmount := resp.Data.Amount
	if resp.Data.PayURL != "" {
		payAmount = req.Amount
	}

	expiredAt := time.Now().In(expiryLocation).Add(qrValidity)
	dpst, err = w.datasource.UpdateDepositReference(ctx, dpst.DepositID, model.DepositReference{
		Payee:         req.FullName,
		PayAmount:     payAmount,
		QrCode:        qrCode,
		SystemRef:     resp.Data.PaymentID,
		SystemOrderNo: resp.Data.TransactionID,
		Fee:           req.Fee,
		ExpiredAt:     expiredAt,
	})
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not finalize deposit", err)
	}

	return &PaymentResponse{
		ID:          dpst.DepositID,
		MerchantRef: resp.Data.TransactionID,
		SystemRef:   resp.Data.PaymentID,
		Payee:       req.FullName,
		PayAmount:   req.Amount,
		QrCode:      qrCode,
		ExpiredDate: expiredAt.Add(-expiryMargin).Format(time.RFC3339),
	}, nil
}

// applyDepositCallback applies a provider callback to a deposit. The
// terminal transition is a conditional update on PENDING; a callback that
// arrives after the record is terminal is a silent no-op. The settlement
// notifier fires only for the caller that won the transition to SUCCESSED.
func (w *Wpayz) applyDepositCallback(ctx context.Context, event *model.CallbackEvent) error {
	ctx, span := tracer.Start(ctx, "Applying deposit callback")
	defer span.End()

	dpst, err := w.datasource.GetDepositBySystemRef(ctx, event.PaymentID)
	if errors.Is(err, database.ErrNotFound) {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("deposit %s not found", event.PaymentID), nil)
	}
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "could not look up deposit", err)
	}

	status := model.StatusFailed
	if event.Succeeded() {
		status = model.StatusSuccessed
	}

	// Backdate late settlements so reported timing reflects when the
	// customer actually paid, not when the provider got around to us.
	now := time.Now()
	successedAt := now
	if now.Sub(dpst.CreatedAt) > backdateWindow {
		successedAt = dpst.CreatedAt
	}

	settled, err := w.datasource.SettleDeposit(ctx, dpst.DepositID, model.DepositSettlement{
		Status:        status,
		SuccessedAt:   successedAt,
		CreditAmount:  event.CreditAmount(),
		Fee:           event.FeeAmount,
		PaymentStatus: event.Status,
		Payload:       event,
	})
	if errors.Is(err, database.ErrNotFound) {
		// Already terminal: duplicate or late delivery, absorb it.
		logrus.Debugf("callback %s update on non pending deposit", event.TransactionID)
		return nil
	}
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "could not settle deposit", err)
	}

	if settled.Status == model.StatusSuccessed {
		if err := w.notifier.NotifyDepositSettled(ctx, settled.DepositID, SettlementFlags{IsAuto: true, IsFee: false}); err != nil {
			logrus.Errorf("deposit %s settlement notification failed: %v", settled.DepositID, err)
		}
	}
	return nil
}

// CheckOrderStatus looks a deposit up by provider order number. Failed
// deposits are not queryable orders and surface as not found.
func (w *Wpayz) CheckOrderStatus(ctx context.Context, systemOrderNo string) (*OrderStatus, error) {
	dpst, err := w.datasource.GetDepositBySystemOrderNo(ctx, systemOrderNo)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("order %s not found", systemOrderNo), nil)
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not look up order", err)
	}
	if dpst.Status == model.StatusFailed {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("order %s not found", systemOrderNo), nil)
	}

	return &OrderStatus{
		CustomerID: dpst.CustomerID,
		Status:     dpst.Status,
		Amount:     dpst.Amount,
	}, nil
}

// GetBalance fetches the agent's balance from the provider. The provider
// keeps one pot, reported as both deposit and withdraw balance.
func (w *Wpayz) GetBalance(ctx context.Context, params ProviderParams) (*BalanceResponse, error) {
	resp, err := w.provider.FetchBalance(ctx, params)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUpstream, err.Error(), err)
	}
	if resp.Rejected() {
		message := resp.RejectionMessage("Balance fetch failed")
		return nil, apierror.NewAPIError(apierror.ErrProviderRejected, message, message)
	}

	return &BalanceResponse{
		DepositBalance:  resp.Data.Balance,
		WithdrawBalance: resp.Data.Balance,
		WithdrawPending: 0,
	}, nil
}
