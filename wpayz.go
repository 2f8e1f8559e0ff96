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
	"strings"
	"time"

	"github.com/kobpay/wpayz/config"
	"github.com/kobpay/wpayz/database"
)

// Wpayz is the provider adapter core: it owns the deposit and withdrawal
// lifecycles, routes provider callbacks, and talks to the upstream provider
// and the back-office settlement notifier.
type Wpayz struct {
	datasource database.IDataSource
	provider   *ProviderClient
	qr         *QRResolver
	notifier   SettlementNotifier
	browser    *BrowserStrategy
}

func NewWpayz(ds database.IDataSource) (*Wpayz, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	providerClient := NewProviderClient(
		configuration.Provider.APIHost,
		time.Duration(configuration.Provider.TimeoutSec)*time.Second,
	)

	browser := NewBrowserStrategy()
	resolver := NewQRResolver(
		time.Duration(configuration.QR.TimeoutSec)*time.Second,
		selectStrategies(configuration.QR.Strategies, browser)...,
	)

	return &Wpayz{
		datasource: ds,
		provider:   providerClient,
		qr:         resolver,
		notifier:   NewQueueNotifier(),
		browser:    browser,
	}, nil
}

// selectStrategies builds the ordered QR strategy chain. An empty
// configuration enables every strategy in default priority order.
func selectStrategies(names []string, browser *BrowserStrategy) []QRStrategy {
	available := map[string]QRStrategy{
		"payment-info":   &PaymentInfoStrategy{},
		"payment-detail": &PaymentDetailStrategy{},
		"browser":        browser,
	}
	if len(names) == 0 {
		return []QRStrategy{available["payment-info"], available["payment-detail"], available["browser"]}
	}
	var selected []QRStrategy
	for _, name := range names {
		if strategy, ok := available[strings.TrimSpace(name)]; ok {
			selected = append(selected, strategy)
		}
	}
	return selected
}

// Shutdown releases shared resources, in particular the long-lived
// browsing context of the QR chain. Safe to call once at process exit.
func (w *Wpayz) Shutdown() {
	if w.browser != nil {
		w.browser.Shutdown()
	}
}

// uniformBankCodes maps lowercase bank tags to the provider's numeric bank
// codes (Thai interbank codes).
var uniformBankCodes = map[string]string{
	"bbl":   "002",
	"kbank": "004",
	"ktb":   "006",
	"ttb":   "011",
	"scb":   "014",
	"cimb":  "022",
	"uob":   "024",
	"bay":   "025",
	"gsb":   "030",
	"ghb":   "033",
	"baac":  "034",
	"tisco": "067",
	"kkp":   "069",
	"lh":    "073",
}

// MapBankCode translates a caller bank tag into the provider bank code.
// Unknown tags pass through unchanged so new codes do not need a deploy.
func MapBankCode(tag string) string {
	if code, ok := uniformBankCodes[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return code
	}
	return tag
}
