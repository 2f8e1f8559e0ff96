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
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/kobpay/wpayz/internal/request"
)

// QRStrategy resolves a scannable payment code from a provider pay-page
// URL. Strategies are tried in order; each failure moves the chain along.
type QRStrategy interface {
	Name() string
	Resolve(ctx context.Context, payURL string) (string, error)
}

// QRResolver evaluates its strategies in priority order, each bounded by
// its own timeout. If every strategy fails the original pay URL is used as
// the payment code so deposit creation never blocks on QR resolution.
type QRResolver struct {
	strategies []QRStrategy
	timeout    time.Duration
}

func NewQRResolver(timeout time.Duration, strategies ...QRStrategy) *QRResolver {
	return &QRResolver{strategies: strategies, timeout: timeout}
}

// Resolve never fails; the fallback value is the pay URL itself.
func (r *QRResolver) Resolve(ctx context.Context, payURL string) string {
	for _, strategy := range r.strategies {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		code, err := strategy.Resolve(attemptCtx, payURL)
		cancel()
		if err != nil {
			logrus.Warnf("QR strategy %s failed for %s: %v", strategy.Name(), payURL, err)
			continue
		}
		if code != "" {
			logrus.Debugf("QR strategy %s resolved code (%d chars)", strategy.Name(), len(code))
			return code
		}
	}
	logrus.Warnf("all QR strategies failed, falling back to pay URL %s", payURL)
	return payURL
}

// splitPayURL extracts the provider base URL and payment identifier from a
// pay-page URL of the form https://host/pay/{paymentId}.
func splitPayURL(payURL string) (string, string, error) {
	parsed, err := url.Parse(payURL)
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	paymentID := parts[len(parts)-1]
	if paymentID == "" {
		return "", "", fmt.Errorf("could not extract payment id from pay URL: %s", payURL)
	}
	return parsed.Scheme + "://" + parsed.Host, paymentID, nil
}

// PaymentInfoStrategy queries the provider-adjacent metadata API that backs
// the pay page itself.
type PaymentInfoStrategy struct{}

type paymentInfoResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Payment struct {
			PaymentQR       string `json:"payment_qr"`
			PaymentQRBase64 string `json:"payment_qr_base64"`
		} `json:"payment"`
	} `json:"data"`
}

func (s *PaymentInfoStrategy) Name() string { return "payment-info" }

func (s *PaymentInfoStrategy) Resolve(ctx context.Context, payURL string) (string, error) {
	base, paymentID, err := splitPayURL(payURL)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/api/get-payment-info?invoice_id=%s", base, url.QueryEscape(paymentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("source_id", "xpays")
	req.Header.Set("Referer", payURL)

	var info paymentInfoResponse
	if _, err := request.Call(req, &info); err != nil {
		return "", err
	}
	if !info.Success {
		if info.Error != "" {
			return "", fmt.Errorf("payment info request failed: %s", info.Error)
		}
		return "", fmt.Errorf("payment info request failed")
	}
	if info.Data.Payment.PaymentQR == "" {
		return "", fmt.Errorf("payment code not present in payment info response")
	}
	return info.Data.Payment.PaymentQR, nil
}

// PaymentDetailStrategy queries the mirror metadata API, which exposes the
// same data under a different response shape.
type PaymentDetailStrategy struct{}

type paymentDetailResponse struct {
	Status string `json:"status"`
	Data   struct {
		QRCode string `json:"qrcode"`
	} `json:"data"`
}

func (s *PaymentDetailStrategy) Name() string { return "payment-detail" }

func (s *PaymentDetailStrategy) Resolve(ctx context.Context, payURL string) (string, error) {
	base, paymentID, err := splitPayURL(payURL)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/api/payment/%s/detail", base, url.PathEscape(paymentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", payURL)

	var detail paymentDetailResponse
	if _, err := request.Call(req, &detail); err != nil {
		return "", err
	}
	if detail.Status != "ok" {
		return "", fmt.Errorf("payment detail request failed: %s", detail.Status)
	}
	if detail.Data.QRCode == "" {
		return "", fmt.Errorf("payment code not present in payment detail response")
	}
	return detail.Data.QRCode, nil
}

// BrowserStrategy renders the pay page in a shared headless browsing
// context and captures the rendered code from the page's canvas as a data
// URL. The browser is a single long-lived instance: lazily initialized on
// first use and released by Shutdown, never recreated per call. In-flight
// resolutions hold a reference so Shutdown waits for them.
type BrowserStrategy struct {
	mu        sync.Mutex
	allocCtx  context.Context
	browser   context.Context
	cancelAll []context.CancelFunc
	inflight  sync.WaitGroup
	closed    bool
}

func NewBrowserStrategy() *BrowserStrategy {
	return &BrowserStrategy{}
}

func (s *BrowserStrategy) Name() string { return "browser" }

func (s *BrowserStrategy) acquire() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("browser strategy is shut down")
	}
	if s.browser == nil {
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(),
			append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", true))...)
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
		s.allocCtx = allocCtx
		s.browser = browserCtx
		s.cancelAll = []context.CancelFunc{cancelBrowser, cancelAlloc}
	}
	s.inflight.Add(1)
	return s.browser, nil
}

func (s *BrowserStrategy) release() {
	s.inflight.Done()
}

func (s *BrowserStrategy) Resolve(ctx context.Context, payURL string) (string, error) {
	browser, err := s.acquire()
	if err != nil {
		return "", err
	}
	defer s.release()

	// Each resolution runs in a fresh tab of the shared browser.
	tab, cancelTab := chromedp.NewContext(browser)
	defer cancelTab()
	tab, cancelTimeout := context.WithCancel(tab)
	defer cancelTimeout()
	go func() {
		select {
		case <-ctx.Done():
			cancelTimeout()
		case <-tab.Done():
		}
	}()

	var dataURL string
	err = chromedp.Run(tab,
		chromedp.Navigate(payURL),
		chromedp.WaitVisible("canvas", chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelector("canvas").toDataURL("image/png")`, &dataURL),
	)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(dataURL, "data:image/") {
		return "", fmt.Errorf("canvas capture returned no image")
	}
	return dataURL, nil
}

// Shutdown releases the shared browsing context. It waits for in-flight
// resolutions; it is not safe to tear the browser down under them.
func (s *BrowserStrategy) Shutdown() {
	s.mu.Lock()
	s.closed = true
	cancels := s.cancelAll
	s.cancelAll = nil
	s.mu.Unlock()

	s.inflight.Wait()
	for _, cancel := range cancels {
		cancel()
	}
}
