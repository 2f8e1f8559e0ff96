package model

// Provider callback status values.
const (
	CallbackStatusSuccessed = "success"
	CallbackStatusFailed    = "failed"
)

// Explicit callback discriminator values. The provider does not always send
// the field; dispatch falls back to try-deposit-then-withdrawal when absent.
const (
	CallbackTypeDeposit  = "Deposit"
	CallbackTypeWithdraw = "Withdraw"
)

// CallbackEvent is a provider callback reporting the final status of a
// previously submitted transaction. Deliveries may be duplicated and may
// arrive out of order; application must be idempotent.
type CallbackEvent struct {
	Type            string  `json:"type,omitempty" bson:"type,omitempty"`
	Status          string  `json:"status" bson:"status"`
	AgentID         int64   `json:"agentId" bson:"agent_id"`
	UserID          string  `json:"userId" bson:"user_id"`
	PaymentID       string  `json:"paymentId" bson:"payment_id"`         // provider payment id (deposit lookup key)
	TransactionID   string  `json:"transactionId" bson:"transaction_id"` // provider transaction id (withdrawal lookup key)
	Amount          float64 `json:"amount" bson:"amount"`
	FeeAmount       float64 `json:"feeAmount" bson:"fee_amount"`
	NetAmount       float64 `json:"netAmount" bson:"net_amount"`
	BankCode        string  `json:"bankCode,omitempty" bson:"bank_code,omitempty"`
	BankAccountNo   string  `json:"bankAccountNo,omitempty" bson:"bank_account_no,omitempty"`
	BankAccountName string  `json:"bankAccountName,omitempty" bson:"bank_account_name,omitempty"`
}

// Succeeded reports whether the callback carries a success status.
func (e *CallbackEvent) Succeeded() bool {
	return e.Status == CallbackStatusSuccessed
}

// CreditAmount is the amount to credit for a settled deposit: the net
// amount when the provider reports one, otherwise the gross amount.
func (e *CallbackEvent) CreditAmount() float64 {
	if e.NetAmount != 0 {
		return e.NetAmount
	}
	return e.Amount
}
