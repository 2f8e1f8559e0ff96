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

func (d *Datasource) CreateWithdrawal(ctx context.Context, wthd *model.Withdrawal) (*model.Withdrawal, error) {
	_, err := d.collection("withdrawals").InsertOne(ctx, wthd)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "insert withdrawal")
	}
	return wthd, nil
}

// WithdrawalExists checks the natural key regardless of record status.
func (d *Datasource) WithdrawalExists(ctx context.Context, site, transactionID string) (bool, error) {
	err := d.collection("withdrawals").
		FindOne(ctx, bson.M{"site": site, "transaction_id": transactionID},
			options.FindOne().SetProjection(bson.M{"withdrawal_id": 1})).
		Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrap(err, "check withdrawal exists")
	}
	return true, nil
}

func (d *Datasource) GetWithdrawalBySystemOrderNo(ctx context.Context, systemOrderNo string) (*model.Withdrawal, error) {
	return d.findWithdrawal(ctx, bson.M{"system_order_no": systemOrderNo})
}

func (d *Datasource) GetWithdrawalByNaturalKey(ctx context.Context, site, transactionID string) (*model.Withdrawal, error) {
	return d.findWithdrawal(ctx, bson.M{"site": site, "transaction_id": transactionID})
}

func (d *Datasource) findWithdrawal(ctx context.Context, filter bson.M) (*model.Withdrawal, error) {
	var wthd model.Withdrawal
	err := d.collection("withdrawals").FindOne(ctx, filter).Decode(&wthd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find withdrawal")
	}
	return &wthd, nil
}

func (d *Datasource) UpdateWithdrawalReference(ctx context.Context, withdrawalID string, ref model.WithdrawalReference) (*model.Withdrawal, error) {
	update := bson.M{"$set": bson.M{
		"system_ref":      ref.SystemRef,
		"system_order_no": ref.SystemOrderNo,
		"pay_amount":      ref.PayAmount,
		"fee":             ref.Fee,
		"status":          model.StatusPending,
	}}
	return d.findOneAndUpdateWithdrawal(ctx, bson.M{"withdrawal_id": withdrawalID}, update)
}

func (d *Datasource) MarkWithdrawalFailed(ctx context.Context, withdrawalID, errorMessage string) error {
	update := bson.M{"$set": bson.M{
		"status":        model.StatusFailed,
		"error_message": errorMessage,
	}}
	_, err := d.findOneAndUpdateWithdrawal(ctx, bson.M{"withdrawal_id": withdrawalID}, update)
	return err
}

// CompleteWithdrawal applies the terminal transition with a PENDING
// predicate in one conditional update. Any caller that does not win the
// update gets ErrNotFound; withdrawals treat that as a rejected duplicate.
func (d *Datasource) CompleteWithdrawal(ctx context.Context, withdrawalID string, completion model.WithdrawalCompletion) (*model.Withdrawal, error) {
	filter := bson.M{"withdrawal_id": withdrawalID, "status": model.StatusPending}
	update := bson.M{"$set": bson.M{
		"status":           completion.Status,
		"fee":              completion.Fee,
		"completed_at":     completion.CompletedAt,
		"callback_payload": completion.Payload,
	}}
	return d.findOneAndUpdateWithdrawal(ctx, filter, update)
}

func (d *Datasource) findOneAndUpdateWithdrawal(ctx context.Context, filter, update bson.M) (*model.Withdrawal, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var wthd model.Withdrawal
	err := d.collection("withdrawals").FindOneAndUpdate(ctx, filter, update, opts).Decode(&wthd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "update withdrawal")
	}
	return &wthd, nil
}
