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
package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kobpay/wpayz"
)

// AgentParams carries the per-agent provider credentials supplied on every
// request. The secret key is used once to sign the provider assertion and
// is never persisted.
type AgentParams struct {
	AgentID     string `json:"agentId"`
	Site        string `json:"site"`
	GatewayID   string `json:"gatewayId"`
	SecretKey   string `json:"secretKey"`
	CallbackURL string `json:"callbackURL"`
	ResultURL   string `json:"resultURL"`
}

func (p *AgentParams) validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.AgentID, validation.Required),
		validation.Field(&p.Site, validation.Required),
		validation.Field(&p.SecretKey, validation.Required),
	)
}

func (p *AgentParams) ToProviderParams() wpayz.ProviderParams {
	return wpayz.ProviderParams{
		AgentID:     p.AgentID,
		Site:        p.Site,
		GatewayID:   p.GatewayID,
		SecretKey:   p.SecretKey,
		CallbackURL: p.CallbackURL,
		ResultURL:   p.ResultURL,
	}
}

type CreatePayment struct {
	Username        string  `json:"username"`
	FullName        string  `json:"fullName"`
	AccountNo       string  `json:"accountNo"`
	AccountBankCode string  `json:"accountBankCode"`
	Amount          float64 `json:"amount"`
	Fee             float64 `json:"fee"`
	AgentParams
}

func (p *CreatePayment) ValidateCreatePayment() error {
	if err := p.AgentParams.validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(p,
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.Amount, validation.Required, validation.Min(0.01)),
	)
}

func (p *CreatePayment) ToPaymentRequest() *wpayz.PaymentRequest {
	return &wpayz.PaymentRequest{
		Username:        p.Username,
		FullName:        p.FullName,
		AccountNo:       p.AccountNo,
		AccountBankCode: p.AccountBankCode,
		Amount:          p.Amount,
		Fee:             p.Fee,
		Params:          p.ToProviderParams(),
	}
}

type CreateWithdraw struct {
	TransactionID string  `json:"transactionId"`
	Username      string  `json:"username"`
	FullName      string  `json:"fullName"`
	BankCode      string  `json:"bankCode"`
	AccountNo     string  `json:"accountNo"`
	PhoneNumber   string  `json:"phoneNumber"`
	Amount        float64 `json:"amount"`
	Fee           float64 `json:"fee"`
	Callback      string  `json:"callback"`
	AgentParams
}

func (w *CreateWithdraw) ValidateCreateWithdraw() error {
	if err := w.AgentParams.validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(w,
		validation.Field(&w.TransactionID, validation.Required),
		validation.Field(&w.AccountNo, validation.Required),
		validation.Field(&w.Amount, validation.Required, validation.Min(0.01)),
	)
}

func (w *CreateWithdraw) ToWithdrawRequest() *wpayz.WithdrawRequest {
	return &wpayz.WithdrawRequest{
		TransactionID: w.TransactionID,
		CustomerID:    w.Username,
		FullName:      w.FullName,
		BankTag:       w.BankCode,
		BankAccountNo: w.AccountNo,
		PhoneNumber:   w.PhoneNumber,
		Amount:        w.Amount,
		Fee:           w.Fee,
		Callback:      w.Callback,
		Params:        w.ToProviderParams(),
	}
}

type BalanceQuery struct {
	AgentParams
}

func (b *BalanceQuery) ValidateBalanceQuery() error {
	return b.AgentParams.validate()
}
