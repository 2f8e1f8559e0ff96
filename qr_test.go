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

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

const testPayURL = "https://pay.test/pay/INV123"

func TestSplitPayURL(t *testing.T) {
	base, paymentID, err := splitPayURL(testPayURL)
	assert.NoError(t, err)
	assert.Equal(t, "https://pay.test", base)
	assert.Equal(t, "INV123", paymentID)

	_, _, err = splitPayURL("https://pay.test/")
	assert.Error(t, err)
}

func TestPaymentInfoStrategy(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://pay.test/api/get-payment-info",
		httpmock.NewStringResponder(200, `{"success": true, "data": {"payment": {"payment_qr": "00020154061.0006304"}}}`))

	strategy := &PaymentInfoStrategy{}
	code, err := strategy.Resolve(context.Background(), testPayURL)
	assert.NoError(t, err)
	assert.Equal(t, "00020154061.0006304", code)
}

func TestPaymentInfoStrategyRejectsFailureEnvelope(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://pay.test/api/get-payment-info",
		httpmock.NewStringResponder(200, `{"success": false, "error": "invoice expired"}`))

	strategy := &PaymentInfoStrategy{}
	_, err := strategy.Resolve(context.Background(), testPayURL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invoice expired")
}

func TestPaymentDetailStrategy(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://pay.test/api/payment/INV123/detail",
		httpmock.NewStringResponder(200, `{"status": "ok", "data": {"qrcode": "00020154061.0006304"}}`))

	strategy := &PaymentDetailStrategy{}
	code, err := strategy.Resolve(context.Background(), testPayURL)
	assert.NoError(t, err)
	assert.Equal(t, "00020154061.0006304", code)
}

func TestResolveUsesFirstWorkingStrategy(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://pay.test/api/get-payment-info",
		httpmock.NewErrorResponder(assert.AnError))
	httpmock.RegisterResponder("GET", "https://pay.test/api/payment/INV123/detail",
		httpmock.NewStringResponder(200, `{"status": "ok", "data": {"qrcode": "RESOLVED"}}`))

	resolver := NewQRResolver(time.Second, &PaymentInfoStrategy{}, &PaymentDetailStrategy{})
	code := resolver.Resolve(context.Background(), testPayURL)
	assert.Equal(t, "RESOLVED", code)
}

func TestResolveFallsBackToPayURL(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://pay.test/api/get-payment-info",
		httpmock.NewErrorResponder(assert.AnError))
	httpmock.RegisterResponder("GET", "https://pay.test/api/payment/INV123/detail",
		httpmock.NewErrorResponder(assert.AnError))

	resolver := NewQRResolver(time.Second, &PaymentInfoStrategy{}, &PaymentDetailStrategy{})
	code := resolver.Resolve(context.Background(), testPayURL)
	assert.Equal(t, testPayURL, code)
}

func TestResolveSkipsEmptyResults(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://pay.test/api/get-payment-info",
		httpmock.NewStringResponder(200, `{"success": true, "data": {"payment": {"payment_qr": ""}}}`))
	httpmock.RegisterResponder("GET", "https://pay.test/api/payment/INV123/detail",
		httpmock.NewStringResponder(200, `{"status": "ok", "data": {"qrcode": "SECOND"}}`))

	resolver := NewQRResolver(time.Second, &PaymentInfoStrategy{}, &PaymentDetailStrategy{})
	code := resolver.Resolve(context.Background(), testPayURL)
	assert.Equal(t, "SECOND", code)
}
