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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"

	// DEFAULT_PROVIDER_TIMEOUT_SEC bounds every upstream provider call.
	DEFAULT_PROVIDER_TIMEOUT_SEC = 15
	// DEFAULT_QR_TIMEOUT_SEC bounds each QR resolution strategy independently.
	DEFAULT_QR_TIMEOUT_SEC = 10
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL        bool   `json:"ssl" envconfig:"WPAYZ_SERVER_SSL"`
	Secure     bool   `json:"secure" envconfig:"WPAYZ_SERVER_SECURE"`
	SecretKey  string `json:"secret_key" envconfig:"WPAYZ_SERVER_SECRET_KEY"`
	Domain     string `json:"domain" envconfig:"WPAYZ_SERVER_SSL_DOMAIN"`
	Email      string `json:"ssl_email" envconfig:"WPAYZ_SERVER_SSL_EMAIL"`
	Port       string `json:"port" envconfig:"WPAYZ_SERVER_PORT"`
	PublicHost string `json:"public_host" envconfig:"WPAYZ_SERVER_PUBLIC_HOST"` // host the provider calls back on
}

type DataSourceConfig struct {
	Dns      string `json:"dns" envconfig:"WPAYZ_DATA_SOURCE_DNS"`
	Database string `json:"database" envconfig:"WPAYZ_DATA_SOURCE_DATABASE"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"WPAYZ_REDIS_DNS"`
}

// ProviderConfig points at the upstream payment provider API.
type ProviderConfig struct {
	APIHost    string `json:"api_host" envconfig:"WPAYZ_PROVIDER_API_HOST"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"WPAYZ_PROVIDER_TIMEOUT_SEC"`
}

// QRConfig orders and bounds the QR resolution strategies. Strategies not
// listed are skipped; an empty list enables the full default chain.
type QRConfig struct {
	Strategies []string `json:"strategies" envconfig:"WPAYZ_QR_STRATEGIES"`
	TimeoutSec int      `json:"timeout_sec" envconfig:"WPAYZ_QR_TIMEOUT_SEC"`
}

// BackOfficeConfig points at the settlement notifier consumed by the
// lifecycle managers.
type BackOfficeConfig struct {
	Url     string            `json:"url" envconfig:"WPAYZ_BACKOFFICE_URL"`
	Headers map[string]string `json:"headers"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"WPAYZ_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"WPAYZ_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"WPAYZ_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type OtelConfig struct {
	Endpoint string `json:"endpoint" envconfig:"WPAYZ_OTEL_ENDPOINT"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"WPAYZ_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Provider     ProviderConfig   `json:"provider"`
	QR           QRConfig         `json:"qr"`
	BackOffice   BackOfficeConfig `json:"back_office"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	Otel         OtelConfig       `json:"otel"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("wpayz", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called wpayz.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Wpayz Adapter"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.DataSource.Database == "" {
		cnf.DataSource.Database = "wpayz"
	}

	if cnf.Provider.APIHost == "" {
		log.Println("Error: Provider API host is empty. It's a required field.")
		return errors.New("provider API host is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Provider.APIHost = strings.TrimRight(strings.TrimSpace(cnf.Provider.APIHost), "/")

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Provider.TimeoutSec <= 0 {
		cnf.Provider.TimeoutSec = DEFAULT_PROVIDER_TIMEOUT_SEC
	}

	if cnf.QR.TimeoutSec <= 0 {
		cnf.QR.TimeoutSec = DEFAULT_QR_TIMEOUT_SEC
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
