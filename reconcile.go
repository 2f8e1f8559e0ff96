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
	"strings"

	"github.com/kobpay/wpayz/database"
	"github.com/kobpay/wpayz/internal/apierror"
)

// localIDSuffix marks identifiers minted on our side. Provider transaction
// queries only understand provider references, so a local id is translated
// to the stored systemRef before the upstream call.
const localIDSuffix = "WPZ"

// LookupProviderDeposit queries the provider for a single deposit
// transaction, translating a local order number into the provider reference
// when needed. Used to reconcile records left PENDING by lost callbacks or
// upstream transport failures.
func (w *Wpayz) LookupProviderDeposit(ctx context.Context, params ProviderParams, id string) (*ProviderResponse, error) {
	if strings.HasSuffix(id, localIDSuffix) {
		dpst, err := w.datasource.GetDepositBySystemOrderNo(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("order %s not found", id), nil)
		}
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not look up order", err)
		}
		id = dpst.SystemRef
	}

	resp, err := w.provider.QueryDepositTransaction(ctx, params, id)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUpstream, err.Error(), err)
	}
	return resp, nil
}

// LookupProviderWithdrawal is the payout counterpart of
// LookupProviderDeposit.
func (w *Wpayz) LookupProviderWithdrawal(ctx context.Context, params ProviderParams, id string) (*ProviderResponse, error) {
	if strings.HasSuffix(id, localIDSuffix) {
		wthd, err := w.datasource.GetWithdrawalBySystemOrderNo(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("transaction %s not found", id), nil)
		}
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not look up transaction", err)
		}
		id = wthd.SystemRef
	}

	resp, err := w.provider.QueryWithdrawTransaction(ctx, params, id)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUpstream, err.Error(), err)
	}
	return resp, nil
}

// ListProviderDeposits lists deposit transactions at the provider for a
// date range.
func (w *Wpayz) ListProviderDeposits(ctx context.Context, params ProviderParams, rng TransactionRange) (*ProviderTransactionsResponse, error) {
	resp, err := w.provider.QueryDepositTransactions(ctx, params, rng)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUpstream, err.Error(), err)
	}
	return resp, nil
}

// ListProviderWithdrawals lists withdraw transactions at the provider for a
// date range.
func (w *Wpayz) ListProviderWithdrawals(ctx context.Context, params ProviderParams, rng TransactionRange) (*ProviderTransactionsResponse, error) {
	resp, err := w.provider.QueryWithdrawTransactions(ctx, params, rng)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUpstream, err.Error(), err)
	}
	return resp, nil
}
