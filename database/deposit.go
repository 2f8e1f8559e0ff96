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

package database

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kobpay/wpayz/model"
)

func (d *Datasource) CreateDeposit(ctx context.Context, dpst *model.Deposit) (*model.Deposit, error) {
	_, err := d.collection("deposits").InsertOne(ctx, dpst)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "insert deposit")
	}
	return dpst, nil
}

func (d *Datasource) GetDepositBySystemRef(ctx context.Context, systemRef string) (*model.Deposit, error) {
	return d.findDeposit(ctx, bson.M{"system_ref": systemRef})
}

func (d *Datasource) GetDepositBySystemOrderNo(ctx context.Context, systemOrderNo string) (*model.Deposit, error) {
	return d.findDeposit(ctx, bson.M{"system_order_no": systemOrderNo})
}

func (d *Datasource) findDeposit(ctx context.Context, filter bson.M) (*model.Deposit, error) {
	var dpst model.Deposit
	err := d.collection("deposits").FindOne(ctx, filter).Decode(&dpst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find deposit")
	}
	return &dpst, nil
}

// UpdateDepositReference finalizes a freshly created deposit with the
// provider references and resolved payment code.
func (d *Datasource) UpdateDepositReference(ctx context.Context, depositID string, ref model.DepositReference) (*model.Deposit, error) {
	update := bson.M{"$set": bson.M{
		"payee":           ref.Payee,
		"pay_amount":      ref.PayAmount,
		"qr_code":         ref.QrCode,
		"system_ref":      ref.SystemRef,
		"system_order_no": ref.SystemOrderNo,
		"fee":             ref.Fee,
		"expired_at":      ref.ExpiredAt,
	}}
	return d.findOneAndUpdateDeposit(ctx, bson.M{"deposit_id": depositID}, update)
}

func (d *Datasource) MarkDepositFailed(ctx context.Context, depositID, errorCode, errorMessage string) error {
	update := bson.M{"$set": bson.M{
		"status":        model.StatusFailed,
		"error_code":    errorCode,
		"error_message": errorMessage,
	}}
	_, err := d.findOneAndUpdateDeposit(ctx, bson.M{"deposit_id": depositID}, update)
	return err
}

// SettleDeposit applies the terminal transition from a provider callback as
// a single conditional update: the PENDING predicate and the write are one
// indivisible store operation, so of two concurrent callbacks only one can
// win. The loser observes ErrNotFound.
func (d *Datasource) SettleDeposit(ctx context.Context, depositID string, settlement model.DepositSettlement) (*model.Deposit, error) {
	filter := bson.M{"deposit_id": depositID, "status": model.StatusPending}
	update := bson.M{"$set": bson.M{
		"status":           settlement.Status,
		"successed_at":     settlement.SuccessedAt,
		"pay_amount":       settlement.CreditAmount,
		"fee":              settlement.Fee,
		"payment_status":   settlement.PaymentStatus,
		"callback_payload": settlement.Payload,
	}}
	return d.findOneAndUpdateDeposit(ctx, filter, update)
}

func (d *Datasource) findOneAndUpdateDeposit(ctx context.Context, filter, update bson.M) (*model.Deposit, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var dpst model.Deposit
	err := d.collection("deposits").FindOneAndUpdate(ctx, filter, update, opts).Decode(&dpst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "update deposit")
	}
	return &dpst, nil
}
