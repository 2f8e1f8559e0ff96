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

// Deposit represents one inbound payment attempt collected from an end
// customer. It is created PENDING before the provider is contacted and
// reaches a terminal state only through a provider callback or an explicit
// provider rejection at creation time.
type Deposit struct {
	DepositID       string          `json:"deposit_id" bson:"deposit_id"`
	MerchantID      string          `json:"merchant_id" bson:"merchant_id"`
	AgentID         string          `json:"agent_id" bson:"agent_id"`
	Site            string          `json:"site" bson:"site"`
	CustomerID      string          `json:"customer_id" bson:"customer_id"`
	Amount          float64         `json:"amount" bson:"amount"`
	Fee             float64         `json:"fee" bson:"fee"`
	PayAmount       float64         `json:"pay_amount" bson:"pay_amount"`
	Payee           string          `json:"payee" bson:"payee"`
	QrCode          string          `json:"qr_code" bson:"qr_code"`
	SystemRef       string          `json:"system_ref" bson:"system_ref"`         // provider payment id, unique once assigned
	SystemOrderNo   string          `json:"system_order_no" bson:"system_order_no"` // provider transaction id
	PaymentStatus   string          `json:"payment_status" bson:"payment_status"`   // provider's raw status string
	Status          string          `json:"status" bson:"status"`
	ExpiredAt       time.Time       `json:"expired_at" bson:"expired_at"`
	SuccessedAt     *time.Time      `json:"successed_at,omitempty" bson:"successed_at,omitempty"`
	Callback        string          `json:"callback" bson:"callback"`
	CallbackPayload *CallbackEvent  `json:"callback_payload,omitempty" bson:"callback_payload,omitempty"` // audit only
	GatewayID       string          `json:"gateway_id" bson:"gateway_id"`
	PaymentMethod   string          `json:"payment_method" bson:"payment_method"`
	ErrorCode       string          `json:"error_code,omitempty" bson:"error_code,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
}

// DepositReference holds the provider references and resolved payment code
// written when the provider accepts a deposit request.
type DepositReference struct {
	Payee         string
	PayAmount     float64
	QrCode        string
	SystemRef     string
	SystemOrderNo string
	Fee           float64
	ExpiredAt     time.Time
}

// DepositSettlement is the terminal update applied from a provider callback.
type DepositSettlement struct {
	Status        string
	SuccessedAt   time.Time
	CreditAmount  float64
	Fee           float64
	PaymentStatus string
	Payload       *CallbackEvent
}

func (d *Deposit) RecordID() string     { return d.DepositID }
func (d *Deposit) RecordStatus() string { return d.Status }
func (d *Deposit) RecordAmount() float64 {
	return d.Amount
}
