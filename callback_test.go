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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kobpay/wpayz/model"
)

func TestRouteCallbackTriesDepositFirst(t *testing.T) {
	service, datasource, notifier := newTestService(t)
	seedPendingDeposit(datasource, "SHARED", 10, time.Now())
	seedPendingWithdrawal(datasource, "SHARED", "https://merchant.test/hooks")

	err := service.RouteCallback(context.Background(), &model.CallbackEvent{
		Status:        model.CallbackStatusSuccessed,
		PaymentID:     "SHARED",
		TransactionID: "SHARED",
		Amount:        10,
	})
	assert.NoError(t, err)

	dpst, _ := datasource.GetDepositBySystemRef(context.Background(), "SHARED")
	wthd, _ := datasource.GetWithdrawalBySystemOrderNo(context.Background(), "SHARED")
	assert.Equal(t, model.StatusSuccessed, dpst.Status)
	assert.Equal(t, model.StatusPending, wthd.Status)
	assert.Len(t, notifier.DepositEvents, 1)
	assert.Empty(t, notifier.WithdrawEvents)
}

func TestRouteCallbackFallsThroughToWithdrawal(t *testing.T) {
	service, datasource, notifier := newTestService(t)
	seedPendingWithdrawal(datasource, "WT9", "https://merchant.test/hooks")

	err := service.RouteCallback(context.Background(), &model.CallbackEvent{
		Status:        model.CallbackStatusSuccessed,
		PaymentID:     "no-such-deposit",
		TransactionID: "WT9",
	})
	assert.NoError(t, err)

	wthd, _ := datasource.GetWithdrawalBySystemOrderNo(context.Background(), "WT9")
	assert.Equal(t, model.StatusSuccessed, wthd.Status)
	assert.Len(t, notifier.WithdrawEvents, 1)
}

func TestRouteCallbackUnknownReferenceIsAcked(t *testing.T) {
	service, _, notifier := newTestService(t)

	err := service.RouteCallback(context.Background(), &model.CallbackEvent{
		Status:        model.CallbackStatusSuccessed,
		PaymentID:     "ghost",
		TransactionID: "ghost",
	})
	assert.NoError(t, err)
	assert.Empty(t, notifier.DepositEvents)
	assert.Empty(t, notifier.WithdrawEvents)
}

func TestRouteCallbackHonorsExplicitType(t *testing.T) {
	service, datasource, _ := newTestService(t)
	seedPendingDeposit(datasource, "BOTH", 10, time.Now())
	seedPendingWithdrawal(datasource, "BOTH", "")

	err := service.RouteCallback(context.Background(), &model.CallbackEvent{
		Type:          model.CallbackTypeWithdraw,
		Status:        model.CallbackStatusSuccessed,
		PaymentID:     "BOTH",
		TransactionID: "BOTH",
	})
	assert.NoError(t, err)

	// The discriminator short-circuits dispatch; the deposit is untouched.
	dpst, _ := datasource.GetDepositBySystemRef(context.Background(), "BOTH")
	wthd, _ := datasource.GetWithdrawalBySystemOrderNo(context.Background(), "BOTH")
	assert.Equal(t, model.StatusPending, dpst.Status)
	assert.Equal(t, model.StatusSuccessed, wthd.Status)
}

func TestRouteCallbackExplicitTypeUnknownReferenceIsAcked(t *testing.T) {
	service, _, _ := newTestService(t)

	err := service.RouteCallback(context.Background(), &model.CallbackEvent{
		Type:          model.CallbackTypeDeposit,
		Status:        model.CallbackStatusSuccessed,
		PaymentID:     "ghost",
		TransactionID: "ghost",
	})
	assert.NoError(t, err)
}
