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

	"github.com/sirupsen/logrus"

	"github.com/kobpay/wpayz/internal/apierror"
	"github.com/kobpay/wpayz/model"
)

// RouteCallback dispatches a provider callback to the deposit or withdrawal
// side. Callbacks rarely carry a type marker, so routing is by lookup: try
// the deposit side first, and if no deposit owns the reference, try the
// withdrawal side. A callback that matches neither record is logged and
// dropped — the provider retries unacknowledged deliveries, and a reference
// we will never recognize should not be retried forever.
func (w *Wpayz) RouteCallback(ctx context.Context, event *model.CallbackEvent) error {
	ctx, span := tracer.Start(ctx, "Routing provider callback")
	defer span.End()

	switch event.Type {
	case model.CallbackTypeDeposit:
		return w.absorbUnknown(ctx, event, w.applyDepositCallback(ctx, event))
	case model.CallbackTypeWithdraw:
		return w.absorbUnknown(ctx, event, w.applyWithdrawCallback(ctx, event))
	}

	err := w.applyDepositCallback(ctx, event)
	if !apierror.Is(err, apierror.ErrNotFound) {
		return err
	}
	return w.absorbUnknown(ctx, event, w.applyWithdrawCallback(ctx, event))
}

// absorbUnknown converts a not-found outcome into an acknowledged no-op.
func (w *Wpayz) absorbUnknown(_ context.Context, event *model.CallbackEvent, err error) error {
	if apierror.Is(err, apierror.ErrNotFound) {
		logrus.Warnf("callback for unknown reference %s/%s dropped", event.PaymentID, event.TransactionID)
		return nil
	}
	return err
}
