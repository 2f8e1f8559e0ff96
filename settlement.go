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
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/kobpay/wpayz/config"
	"github.com/kobpay/wpayz/internal/request"
)

const SETTLEMENT_QUEUE = "new:settlement"

// SettlementFlags qualifies a deposit settlement toward the back office.
type SettlementFlags struct {
	IsAuto bool `json:"isAuto"`
	IsFee  bool `json:"isFee"`
}

// SettlementEvent is the queued notification that a record reached a state
// the back office must act on.
type SettlementEvent struct {
	Kind     string          `json:"kind"` // "deposit" or "withdraw"
	RecordID string          `json:"record_id"`
	Flags    SettlementFlags `json:"flags,omitempty"`
}

// SettlementNotifier is the back-office settlement interface consumed by
// the lifecycle managers. Delivery is at-least-once on the notifier's side;
// the managers guarantee at most one call per settlement event by only
// notifying after winning the conditional status transition.
type SettlementNotifier interface {
	NotifyDepositSettled(ctx context.Context, depositID string, flags SettlementFlags) error
	NotifyWithdrawSettled(ctx context.Context, withdrawalID string) error
}

// QueueNotifier enqueues settlement events for the worker process to
// deliver, so a slow back office never stalls callback handling.
type QueueNotifier struct{}

func NewQueueNotifier() *QueueNotifier {
	return &QueueNotifier{}
}

func (n *QueueNotifier) NotifyDepositSettled(_ context.Context, depositID string, flags SettlementFlags) error {
	return enqueueSettlement(SettlementEvent{Kind: "deposit", RecordID: depositID, Flags: flags})
}

func (n *QueueNotifier) NotifyWithdrawSettled(_ context.Context, withdrawalID string) error {
	return enqueueSettlement(SettlementEvent{Kind: "withdraw", RecordID: withdrawalID})
}

func enqueueSettlement(event SettlementEvent) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}

	if conf.BackOffice.Url == "" {
		return nil
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: conf.Redis.Dns})
	defer func() {
		if err := client.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{asynq.Queue(SETTLEMENT_QUEUE)}
	task := asynq.NewTask(SETTLEMENT_QUEUE, payload, taskOptions...)
	info, err := client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	return nil
}

// ProcessSettlement delivers a settlement notification task from the queue.
func ProcessSettlement(_ context.Context, task *asynq.Task) error {
	var event SettlementEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		log.Printf("Error unmarshaling settlement payload: %v", err)
		return err
	}
	log.Printf("Processing settlement: %s %s\n", event.Kind, event.RecordID)
	return deliverSettlement(event)
}

// deliverSettlement posts the settlement to the back office, retrying with
// bounded exponential backoff on transient failures.
func deliverSettlement(event SettlementEvent) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}

	if conf.BackOffice.Url == "" {
		return nil
	}

	var endpoint string
	var body interface{}
	switch event.Kind {
	case "deposit":
		endpoint = fmt.Sprintf("%s/deposit/%s", conf.BackOffice.Url, event.RecordID)
		body = event.Flags
	case "withdraw":
		endpoint = fmt.Sprintf("%s/withdraw/%s", conf.BackOffice.Url, event.RecordID)
		body = map[string]interface{}{}
	default:
		return fmt.Errorf("unknown settlement kind %q", event.Kind)
	}

	operation := func() error {
		payload, err := request.ToJsonReq(body)
		if err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequest(http.MethodPost, endpoint, payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		for key, value := range conf.BackOffice.Headers {
			req.Header.Set(key, value)
		}

		var response map[string]interface{}
		resp, err := request.Call(req, &response)
		if resp == nil {
			return err
		}
		// An empty 2xx body fails JSON decoding; the delivery still counts.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("back office returned status %d", resp.StatusCode)
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(operation, policy); err != nil {
		logrus.Errorf("settlement delivery failed for %s %s: %v", event.Kind, event.RecordID, err)
		return err
	}
	logrus.Infof("settlement delivered: %s %s", event.Kind, event.RecordID)
	return nil
}
