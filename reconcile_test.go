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
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/kobpay/wpayz/internal/apierror"
	"github.com/kobpay/wpayz/model"
)

func TestLookupProviderDepositTranslatesLocalID(t *testing.T) {
	service, datasource, _ := newTestService(t)

	dpst := seedPendingDeposit(datasource, "P1", 100, time.Now())
	dpst.SystemOrderNo = "ORD-1-WPZ"
	datasource.deposits[dpst.DepositID] = dpst

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var requestedPath string
	httpmock.RegisterResponder("GET", `=~^http://provider\.test/api/wpayz/deposit/transactions/.*`,
		func(req *http.Request) (*http.Response, error) {
			requestedPath = req.URL.Path
			return httpmock.NewStringResponse(200, `{"statusCode": 200, "data": {"paymentId": "P1"}}`), nil
		})

	resp, err := service.LookupProviderDeposit(context.Background(), testParams(), "ORD-1-WPZ")
	assert.NoError(t, err)
	assert.Equal(t, "P1", resp.Data.PaymentID)
	// The provider is asked about its own reference, not our order number.
	assert.Equal(t, "/api/wpayz/deposit/transactions/P1", requestedPath)
}

func TestLookupProviderDepositPassesProviderIDThrough(t *testing.T) {
	service, _, _ := newTestService(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var requestedPath string
	httpmock.RegisterResponder("GET", `=~^http://provider\.test/api/wpayz/deposit/transactions/.*`,
		func(req *http.Request) (*http.Response, error) {
			requestedPath = req.URL.Path
			return httpmock.NewStringResponse(200, `{"statusCode": 200, "data": {"paymentId": "P9"}}`), nil
		})

	_, err := service.LookupProviderDeposit(context.Background(), testParams(), "P9")
	assert.NoError(t, err)
	assert.Equal(t, "/api/wpayz/deposit/transactions/P9", requestedPath)
}

func TestLookupProviderDepositUnknownLocalID(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.LookupProviderDeposit(context.Background(), testParams(), "missing-WPZ")
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
}

func TestLookupProviderWithdrawalTranslatesLocalID(t *testing.T) {
	service, datasource, _ := newTestService(t)

	wthd := seedPendingWithdrawal(datasource, "ORD-2-WPZ", "")
	wthd.SystemRef = "WP2"
	datasource.withdrawals[wthd.WithdrawalID] = wthd

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var requestedPath string
	httpmock.RegisterResponder("GET", `=~^http://provider\.test/api/wpayz/withdraw/transactions/.*`,
		func(req *http.Request) (*http.Response, error) {
			requestedPath = req.URL.Path
			return httpmock.NewStringResponse(200, `{"statusCode": 200, "data": {"paymentId": "WP2"}}`), nil
		})

	_, err := service.LookupProviderWithdrawal(context.Background(), testParams(), "ORD-2-WPZ")
	assert.NoError(t, err)
	assert.Equal(t, "/api/wpayz/withdraw/transactions/WP2", requestedPath)
}

func TestListProviderDeposits(t *testing.T) {
	service, _, _ := newTestService(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testProviderHost+"/api/wpayz/deposit/transactions",
		httpmock.NewStringResponder(200, `{"statusCode": 200, "data": [{"paymentId": "P1"}, {"paymentId": "P2"}]}`))

	resp, err := service.ListProviderDeposits(context.Background(), testParams(), TransactionRange{
		StartTime: time.Now().AddDate(0, 0, -1),
		EndTime:   time.Now(),
		Status:    model.StatusSuccessed,
	})
	assert.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}
