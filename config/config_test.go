package config

import (
	"encoding/json"
	"os"
	"testing"
)

func TestValidateAndAddDefaults(t *testing.T) {
	// Test case with empty DataSource DNS
	cnf := Configuration{
		ProjectName: "",
		DataSource: DataSourceConfig{
			Dns: "",
		},
		Provider: ProviderConfig{
			APIHost: "https://api.wpayz.example",
		},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "data source DNS is required" {
		t.Errorf("Expected data source DNS required error, got %v", err)
	}

	cnf = Configuration{
		ProjectName: "",
		DataSource: DataSourceConfig{
			Dns: "mongodb://localhost:27017",
		},
	}

	err = cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "provider API host is required" {
		t.Errorf("Expected provider API host required error, got %v", err)
	}

	// Test case with all required fields filled, expect no error
	cnf = Configuration{
		ProjectName: "Test Project",
		DataSource: DataSourceConfig{
			Dns: "mongodb://localhost:27017",
		},
		Provider: ProviderConfig{
			APIHost: "https://api.wpayz.example/",
		},
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if cnf.Provider.APIHost != "https://api.wpayz.example" {
		t.Errorf("Expected trailing slash trimmed, got %s", cnf.Provider.APIHost)
	}
	if cnf.Provider.TimeoutSec != DEFAULT_PROVIDER_TIMEOUT_SEC {
		t.Errorf("Expected default provider timeout, got %d", cnf.Provider.TimeoutSec)
	}
	if cnf.QR.TimeoutSec != DEFAULT_QR_TIMEOUT_SEC {
		t.Errorf("Expected default QR timeout, got %d", cnf.QR.TimeoutSec)
	}
	if cnf.DataSource.Database != "wpayz" {
		t.Errorf("Expected default database name, got %s", cnf.DataSource.Database)
	}

	// Test default port setting
	cnf.Server.Port = ""
	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "wpayz.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name()) // Clean up after the test

	// Sample configuration to write to the temp file
	sampleConfig := Configuration{
		ProjectName: "Temp Project",
		DataSource: DataSourceConfig{
			Dns: "mongodb://localhost:27017",
		},
		Provider: ProviderConfig{
			APIHost: "https://api.wpayz.example",
		},
	}
	content, err := json.Marshal(sampleConfig)
	if err != nil {
		t.Fatalf("Unable to marshal sample config: %v", err)
	}
	if _, err := tmpFile.Write(content); err != nil {
		t.Fatalf("Unable to write to temporary file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("Unable to close temporary file: %v", err)
	}

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("loadConfigFromFile returned error: %v", err)
	}

	loaded, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if loaded.ProjectName != "Temp Project" {
		t.Errorf("Expected project name from file, got %s", loaded.ProjectName)
	}
	if loaded.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port applied on load, got %s", loaded.Server.Port)
	}
}
