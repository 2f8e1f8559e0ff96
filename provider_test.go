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

	"github.com/golang-jwt/jwt/v5"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func TestSignAssertion(t *testing.T) {
	signed, err := SignAssertion("7001", "user1", "agent-secret")
	assert.NoError(t, err)

	claims := &assertionClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		assert.Equal(t, jwt.SigningMethodHS256, token.Method)
		return []byte("agent-secret"), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "7001", claims.AgentID)
	assert.Equal(t, "user1", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestSignAssertionRejectsWrongKey(t *testing.T) {
	signed, err := SignAssertion("7001", "user1", "agent-secret")
	assert.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}

func TestProviderClientSendsSignedAssertion(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var authorization string
	httpmock.RegisterResponder("POST", testProviderHost+"/api/wpayz/qrcode",
		func(req *http.Request) (*http.Response, error) {
			authorization = req.Header.Get("Authorization")
			return httpmock.NewStringResponse(200, `{"statusCode": 200, "data": {"paymentId": "P1"}}`), nil
		})

	client := NewProviderClient(testProviderHost, 5*time.Second)
	resp, err := client.CreateQR(context.Background(), testParams(), "user1", QRCreateRequest{Amount: 100})
	assert.NoError(t, err)
	assert.False(t, resp.Rejected())
	assert.Equal(t, "P1", resp.Data.PaymentID)

	// The provider expects the raw signed assertion, no Bearer prefix.
	assert.NotEmpty(t, authorization)
	assert.NotContains(t, authorization, "Bearer")
	claims := &assertionClaims{}
	_, err = jwt.ParseWithClaims(authorization, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("agent-secret"), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "7001", claims.AgentID)
	assert.Equal(t, "user1", claims.UserID)
}

func TestProviderClientSurfacesRejectionEnvelope(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testProviderHost+"/api/wpayz/balance",
		httpmock.NewStringResponder(200, `{"statusCode": 403, "data": {"message": "agent suspended"}}`))

	client := NewProviderClient(testProviderHost, 5*time.Second)
	resp, err := client.FetchBalance(context.Background(), testParams())
	assert.NoError(t, err)
	assert.True(t, resp.Rejected())
	assert.Equal(t, "agent suspended", resp.RejectionMessage("fallback"))
}

func TestProviderClientTransportError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testProviderHost+"/api/wpayz/balance",
		httpmock.NewErrorResponder(assert.AnError))

	client := NewProviderClient(testProviderHost, 5*time.Second)
	_, err := client.FetchBalance(context.Background(), testParams())
	assert.Error(t, err)
}

func TestProviderClientUnexpectedHTTPStatus(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testProviderHost+"/api/wpayz/balance",
		httpmock.NewStringResponder(502, `{"error": "bad gateway"}`))

	client := NewProviderClient(testProviderHost, 5*time.Second)
	_, err := client.FetchBalance(context.Background(), testParams())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestQueryTransactionsRange(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var rawQuery string
	httpmock.RegisterResponder("GET", testProviderHost+"/api/wpayz/deposit/transactions",
		func(req *http.Request) (*http.Response, error) {
			rawQuery = req.URL.RawQuery
			return httpmock.NewStringResponse(200, `{"statusCode": 200, "data": [{"paymentId": "P1"}]}`), nil
		})

	client := NewProviderClient(testProviderHost, 5*time.Second)
	resp, err := client.QueryDepositTransactions(context.Background(), testParams(), TransactionRange{
		StartTime: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		UserID:    "user1",
		Status:    "success",
	})
	assert.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Contains(t, rawQuery, "sDate=2025-03-01")
	assert.Contains(t, rawQuery, "eDate=2025-03-02")
	assert.Contains(t, rawQuery, "userId=user1")
}

func TestMapBankCode(t *testing.T) {
	assert.Equal(t, "004", MapBankCode("kbank"))
	assert.Equal(t, "014", MapBankCode(" SCB "))
	assert.Equal(t, "099", MapBankCode("099"))
	assert.Equal(t, "unknown-bank", MapBankCode("unknown-bank"))
}
