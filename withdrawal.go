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

	"github.com/kobpay/wpayz/config"
	"github.com/kobpay/wpayz/database"
	"github.com/kobpay/wpayz/internal/apierror"
	"github.com/kobpay/wpayz/model"
)

// WithdrawRequest is a payout request from the internal ledger. The
// TransactionID is the caller's idempotency key: the pair (site,
// transactionId) may be used once, ever.
type WithdrawRequest struct {
	TransactionID string
	CustomerID    string
	FullName      string
	BankTag       string
	BankAccountNo string
	PhoneNumber   string
	Amount        float64
	Fee           float64
	Callback      string
	Params        ProviderParams
}

// WithdrawResponse acknowledges an accepted payout request.
type WithdrawResponse struct {
	WithdrawID    string  `json:"withdrawId"`
	TransactionID string  `json:"transactionId"`
	Fee           float64 `json:"fee"`
}

// CreateWithdrawal rejects duplicate (site, transactionId) pairs before
// anything else — no record, no upstream call — then creates a PENDING
// record and submits the payout to the provider. On a provider rejection
// the record is marked FAILED; on a transport failure it stays PENDING
// without provider references for later reconciliation.
func (w *Wpayz) CreateWithdrawal(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error) {
	ctx, span := tracer.Start(ctx, "Creating withdrawal")
	defer span.End()

	exists, err := w.datasource.WithdrawalExists(ctx, req.Params.Site, req.TransactionID)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not check withdrawal key", err)
	}
	if exists {
		return nil, apierror.NewAPIError(apierror.ErrConflict,
			fmt.Sprintf("transaction %s/%s already exists", req.Params.Site, req.TransactionID), nil)
	}

	wthd := &model.Withdrawal{
		WithdrawalID:    model.GenerateUUIDWithSuffix("wthd"),
		Site:            req.Params.Site,
		TransactionID:   req.TransactionID,
		AgentID:         req.Params.AgentID,
		GatewayID:       req.Params.GatewayID,
		CustomerID:      req.CustomerID,
		BankCode:        MapBankCode(req.BankTag),
		BankAccountNo:   req.BankAccountNo,
		BankAccountName: req.FullName,
		PhoneNumber:     req.PhoneNumber,
		Amount:          req.Amount,
		Fee:             req.Fee,
		Callback:        req.Callback,
		Status:          model.StatusPending,
		CreatedAt:       time.Now(),
	}
	wthd, err = w.datasource.CreateWithdrawal(ctx, wthd)
	if err != nil {
		span.RecordError(err)
		logrus.Errorf("ERROR saving withdrawal to db. %s", err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not create withdrawal", err)
	}

	conf, err := config.Fetch()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "configuration unavailable", err)
	}

	payload := WithdrawSubmitRequest{
		ToAccountNo:   wthd.BankAccountNo,
		ToAccountName: wthd.BankAccountName,
		ToBankCode:    wthd.BankCode,
		Amount:        wthd.Amount,
		CallbackURL:   fmt.Sprintf("https://%s/callback", conf.Server.PublicHost),
	}
	resp, err := w.provider.SubmitWithdrawal(ctx, req.Params, req.CustomerID, payload)
	if err != nil {
		span.RecordError(err)
		logrus.Errorf("withdrawal %s upstream error: %v", wthd.WithdrawalID, err)
		return nil, apierror.NewAPIError(apierror.ErrUpstream, err.Error(), err)
	}

	if resp.Rejected() {
		message := resp.RejectionMessage("Withdraw creation failed")
		if err := w.datasource.MarkWithdrawalFailed(ctx, wthd.WithdrawalID, message); err != nil {
			logrus.Errorf("withdrawal %s could not be marked failed: %v", wthd.WithdrawalID, err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, message, message)
	}

	payAmount := resp.Data.Amount
	if payAmount == 0 {
		payAmount = wthd.Amount
	}
	_, err = w.datasource.UpdateWithdrawalReference(ctx, wthd.WithdrawalID, model.WithdrawalReference{
		SystemRef:     resp.Data.PaymentID,
		SystemOrderNo: resp.Data.TransactionID,
		PayAmount:     payAmount,
		Fee:           req.Fee,
	})
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not finalize withdrawal", err)
	}

	return &WithdrawResponse{
		WithdrawID:    wthd.WithdrawalID,
		TransactionID: req.TransactionID,
		Fee:           req.Fee,
	}, nil
}

// applyWithdrawCallback applies a provider callback to a withdrawal.
// Unlike deposits, a callback targeting a record that is no longer PENDING
// is rejected as invalid: withdrawals move real money out, so a stray
// duplicate is an error, never silently absorbed.
func (w *Wpayz) applyWithdrawCallback(ctx context.Context, event *model.CallbackEvent) error {
	ctx, span := tracer.Start(ctx, "Applying withdrawal callback")
	defer span.End()

	wthd, err := w.datasource.GetWithdrawalBySystemOrderNo(ctx, event.TransactionID)
	if errors.Is(err, database.ErrNotFound) {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("withdrawal %s not found", event.TransactionID), nil)
	}
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "could not look up withdrawal", err)
	}
	if wthd.Status != model.StatusPending {
		return apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("withdrawal %s already completed", event.TransactionID), nil)
	}

	status := model.StatusFailed
	if event.Succeeded() {
		status = model.StatusSuccessed
	}

	completed, err := w.datasource.CompleteWithdrawal(ctx, wthd.WithdrawalID, model.WithdrawalCompletion{
		Status:      status,
		Fee:         event.FeeAmount,
		CompletedAt: time.Now(),
		Payload:     event,
	})
	if errors.Is(err, database.ErrNotFound) {
		// Lost the conditional update to a concurrent delivery.
		return apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("withdrawal %s already completed", event.TransactionID), nil)
	}
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "could not complete withdrawal", err)
	}

	if completed.Callback != "" {
		if err := w.notifier.NotifyWithdrawSettled(ctx, completed.WithdrawalID); err != nil {
			logrus.Errorf("withdrawal %s settlement notification failed: %v", completed.WithdrawalID, err)
		}
	}
	return nil
}

// CheckWithdrawalStatus looks a withdrawal up by its natural key.
func (w *Wpayz) CheckWithdrawalStatus(ctx context.Context, site, transactionID string) (*model.Withdrawal, error) {
	wthd, err := w.datasource.GetWithdrawalByNaturalKey(ctx, site, transactionID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apierror.NewAPIError(apierror.ErrNotFound,
			fmt.Sprintf("transaction %s/%s not found", site, transactionID), nil)
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not look up withdrawal", err)
	}
	return wthd, nil
}
