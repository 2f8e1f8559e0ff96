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
	"log"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kobpay/wpayz/config"
	"github.com/kobpay/wpayz/model"
)

// ErrNotFound is returned when a lookup matches no record, and by the
// conditional transition helpers when no PENDING record matched the
// predicate (the record is absent or already terminal).
var ErrNotFound = errors.New("record not found")

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	conn     *mongo.Client
	database string
}

// IDataSource is the Transaction Store consumed by the lifecycle managers.
type IDataSource interface {
	deposit
	withdrawal
	EnsureIndexes(ctx context.Context) error
}

type deposit interface {
	CreateDeposit(ctx context.Context, dpst *model.Deposit) (*model.Deposit, error)
	GetDepositBySystemRef(ctx context.Context, systemRef string) (*model.Deposit, error)
	GetDepositBySystemOrderNo(ctx context.Context, systemOrderNo string) (*model.Deposit, error)
	UpdateDepositReference(ctx context.Context, depositID string, ref model.DepositReference) (*model.Deposit, error)
	MarkDepositFailed(ctx context.Context, depositID, errorCode, errorMessage string) error
	SettleDeposit(ctx context.Context, depositID string, settlement model.DepositSettlement) (*model.Deposit, error)
}

type withdrawal interface {
	CreateWithdrawal(ctx context.Context, wthd *model.Withdrawal) (*model.Withdrawal, error)
	WithdrawalExists(ctx context.Context, site, transactionID string) (bool, error)
	GetWithdrawalBySystemOrderNo(ctx context.Context, systemOrderNo string) (*model.Withdrawal, error)
	GetWithdrawalByNaturalKey(ctx context.Context, site, transactionID string) (*model.Withdrawal, error)
	UpdateWithdrawalReference(ctx context.Context, withdrawalID string, ref model.WithdrawalReference) (*model.Withdrawal, error)
	MarkWithdrawalFailed(ctx context.Context, withdrawalID, errorMessage string) error
	CompleteWithdrawal(ctx context.Context, withdrawalID string, completion model.WithdrawalCompletion) (*model.Withdrawal, error)
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{conn: con, database: configuration.DataSource.Database}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dns))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mongodb connect")
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, pkgerrors.Wrap(err, "mongodb ping")
	}
	return client, nil
}

func (d *Datasource) collection(name string) *mongo.Collection {
	return d.conn.Database(d.database).Collection(name)
}

// EnsureIndexes creates the uniqueness guards the lifecycle managers rely
// on: systemRef is unique once assigned on deposits, and the pair
// (site, transactionId) is unique across all withdrawals.
func (d *Datasource) EnsureIndexes(ctx context.Context) error {
	_, err := d.collection("deposits").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "system_ref", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "system_ref", Value: bson.D{{Key: "$gt", Value: ""}}}}),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "create deposits index")
	}

	_, err = d.collection("withdrawals").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "site", Value: 1}, {Key: "transaction_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "create withdrawals index")
	}
	return nil
}
