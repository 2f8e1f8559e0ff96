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
	"sync"

	"github.com/kobpay/wpayz/database"
	"github.com/kobpay/wpayz/model"
)

// MockDataSource is an in-memory database.IDataSource with the same
// conditional-transition semantics as the Mongo implementation: the
// terminal transitions only apply to a PENDING record and report
// database.ErrNotFound otherwise.
type MockDataSource struct {
	mu          sync.Mutex
	deposits    map[string]*model.Deposit
	withdrawals map[string]*model.Withdrawal
}

func NewMockDataSource() *MockDataSource {
	return &MockDataSource{
		deposits:    make(map[string]*model.Deposit),
		withdrawals: make(map[string]*model.Withdrawal),
	}
}

func (m *MockDataSource) EnsureIndexes(_ context.Context) error { return nil }

func (m *MockDataSource) CreateDeposit(_ context.Context, dpst *model.Deposit) (*model.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *dpst
	m.deposits[dpst.DepositID] = &copied
	return dpst, nil
}

func (m *MockDataSource) GetDepositBySystemRef(_ context.Context, systemRef string) (*model.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, dpst := range m.deposits {
		if dpst.SystemRef == systemRef && systemRef != "" {
			copied := *dpst
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDataSource) GetDepositBySystemOrderNo(_ context.Context, systemOrderNo string) (*model.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, dpst := range m.deposits {
		if dpst.SystemOrderNo == systemOrderNo && systemOrderNo != "" {
			copied := *dpst
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDataSource) UpdateDepositReference(_ context.Context, depositID string, ref model.DepositReference) (*model.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dpst, ok := m.deposits[depositID]
	if !ok {
		return nil, database.ErrNotFound
	}
	dpst.Payee = ref.Payee
	dpst.PayAmount = ref.PayAmount
	dpst.QrCode = ref.QrCode
	dpst.SystemRef = ref.SystemRef
	dpst.SystemOrderNo = ref.SystemOrderNo
	dpst.Fee = ref.Fee
	dpst.ExpiredAt = ref.ExpiredAt
	copied := *dpst
	return &copied, nil
}

func (m *MockDataSource) MarkDepositFailed(_ context.Context, depositID, errorCode, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dpst, ok := m.deposits[depositID]
	if !ok {
		return database.ErrNotFound
	}
	dpst.Status = model.StatusFailed
	dpst.ErrorCode = errorCode
	dpst.ErrorMessage = errorMessage
	return nil
}

func (m *MockDataSource) SettleDeposit(_ context.Context, depositID string, settlement model.DepositSettlement) (*model.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dpst, ok := m.deposits[depositID]
	if !ok || dpst.Status != model.StatusPending {
		return nil, database.ErrNotFound
	}
	dpst.Status = settlement.Status
	successedAt := settlement.SuccessedAt
	dpst.SuccessedAt = &successedAt
	dpst.PayAmount = settlement.CreditAmount
	dpst.Fee = settlement.Fee
	dpst.PaymentStatus = settlement.PaymentStatus
	dpst.CallbackPayload = settlement.Payload
	copied := *dpst
	return &copied, nil
}

func (m *MockDataSource) CreateWithdrawal(_ context.Context, wthd *model.Withdrawal) (*model.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *wthd
	m.withdrawals[wthd.WithdrawalID] = &copied
	return wthd, nil
}

func (m *MockDataSource) WithdrawalExists(_ context.Context, site, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, wthd := range m.withdrawals {
		if wthd.Site == site && wthd.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockDataSource) GetWithdrawalBySystemOrderNo(_ context.Context, systemOrderNo string) (*model.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, wthd := range m.withdrawals {
		if wthd.SystemOrderNo == systemOrderNo && systemOrderNo != "" {
			copied := *wthd
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDataSource) GetWithdrawalByNaturalKey(_ context.Context, site, transactionID string) (*model.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, wthd := range m.withdrawals {
		if wthd.Site == site && wthd.TransactionID == transactionID {
			copied := *wthd
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDataSource) UpdateWithdrawalReference(_ context.Context, withdrawalID string, ref model.WithdrawalReference) (*model.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wthd, ok := m.withdrawals[withdrawalID]
	if !ok {
		return nil, database.ErrNotFound
	}
	wthd.SystemRef = ref.SystemRef
	wthd.SystemOrderNo = ref.SystemOrderNo
	wthd.PayAmount = ref.PayAmount
	wthd.Fee = ref.Fee
	wthd.Status = model.StatusPending
	copied := *wthd
	return &copied, nil
}

func (m *MockDataSource) MarkWithdrawalFailed(_ context.Context, withdrawalID, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	wthd, ok := m.withdrawals[withdrawalID]
	if !ok {
		return database.ErrNotFound
	}
	wthd.Status = model.StatusFailed
	wthd.ErrorMessage = errorMessage
	return nil
}

func (m *MockDataSource) CompleteWithdrawal(_ context.Context, withdrawalID string, completion model.WithdrawalCompletion) (*model.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wthd, ok := m.withdrawals[withdrawalID]
	if !ok || wthd.Status != model.StatusPending {
		return nil, database.ErrNotFound
	}
	wthd.Status = completion.Status
	wthd.Fee = completion.Fee
	completedAt := completion.CompletedAt
	wthd.CompletedAt = &completedAt
	wthd.CallbackPayload = completion.Payload
	copied := *wthd
	return &copied, nil
}

// MockNotifier records settlement notifications instead of enqueueing them.
type MockNotifier struct {
	mu              sync.Mutex
	DepositEvents   []SettlementEvent
	WithdrawEvents  []SettlementEvent
	depositFailures error
}

func (n *MockNotifier) NotifyDepositSettled(_ context.Context, depositID string, flags SettlementFlags) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.depositFailures != nil {
		return n.depositFailures
	}
	n.DepositEvents = append(n.DepositEvents, SettlementEvent{Kind: "deposit", RecordID: depositID, Flags: flags})
	return nil
}

func (n *MockNotifier) NotifyWithdrawSettled(_ context.Context, withdrawalID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.WithdrawEvents = append(n.WithdrawEvents, SettlementEvent{Kind: "withdraw", RecordID: withdrawalID})
	return nil
}
