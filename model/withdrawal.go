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

import "time"

// Withdrawal represents one outbound payout attempt to a customer bank
// account. The pair (site, transaction_id) is unique across all withdrawals
// regardless of status; a retried client request with the same key is
// rejected, never merged.
type Withdrawal struct {
	WithdrawalID    string         `json:"withdrawal_id" bson:"withdrawal_id"`
	Site            string         `json:"site" bson:"site"`
	TransactionID   string         `json:"transaction_id" bson:"transaction_id"` // caller-supplied idempotency key
	AgentID         string         `json:"agent_id" bson:"agent_id"`
	GatewayID       string         `json:"gateway_id" bson:"gateway_id"`
	CustomerID      string         `json:"customer_id" bson:"customer_id"`
	BankCode        string         `json:"bank_code" bson:"bank_code"`
	BankAccountNo   string         `json:"bank_account_no" bson:"bank_account_no"`
	BankAccountName string         `json:"bank_account_name" bson:"bank_account_name"`
	PhoneNumber     string         `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Amount          float64        `json:"amount" bson:"amount"`
	Fee             float64        `json:"fee" bson:"fee"`
	PayAmount       float64        `json:"pay_amount" bson:"pay_amount"`
	SystemRef       string         `json:"system_ref" bson:"system_ref"`
	SystemOrderNo   string         `json:"system_order_no" bson:"system_order_no"`
	Status          string         `json:"status" bson:"status"`
	Callback        string         `json:"callback" bson:"callback"`
	CallbackPayload *CallbackEvent `json:"callback_payload,omitempty" bson:"callback_payload,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	ErrorCode       string         `json:"error_code,omitempty" bson:"error_code,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
}

// WithdrawalReference holds the provider references written once the
// provider accepts a payout submission.
type WithdrawalReference struct {
	SystemRef     string
	SystemOrderNo string
	PayAmount     float64
	Fee           float64
}

// WithdrawalCompletion is the terminal update applied from a provider
// callback.
type WithdrawalCompletion struct {
	Status      string
	Fee         float64
	CompletedAt time.Time
	Payload     *CallbackEvent
}

func (w *Withdrawal) RecordID() string     { return w.WithdrawalID }
func (w *Withdrawal) RecordStatus() string { return w.Status }
func (w *Withdrawal) RecordAmount() float64 {
	return w.Amount
}
