package config

import (
	"fmt"
	"strings"
	"time"
)

type HTTPConfig struct {
	Port           int `koanf:"port"`
	MaxHeaderBytes int `koanf:"maxHeaderBytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readHeader"`
	} `koanf:"timeout"`
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	if c.Timeout.Read <= 0 {
		return fmt.Errorf("invalid HTTP server read timeout: %v", c.Timeout.Read)
	}
	if c.Timeout.Write <= 0 {
		return fmt.Errorf("invalid HTTP server write timeout: %v", c.Timeout.Write)
	}
	if c.Timeout.Idle <= 0 {
		return fmt.Errorf("invalid HTTP server idle timeout: %v", c.Timeout.Idle)
	}
	if c.Timeout.ReadHeader <= 0 {
		return fmt.Errorf("invalid HTTP server read header timeout: %v", c.Timeout.ReadHeader)
	}
	return nil
}

type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !strings.HasPrefix(c.URL, "postgres://") && !strings.HasPrefix(c.URL, "postgresql://") {
		return fmt.Errorf("database URL must start with 'postgres://': %s", c.URL)
	}
	return nil
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) Validate() error {
	return nil
}

type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("pprof is enabled but address is not configured")
	}
	return nil
}

type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout is not configured")
	}
	return nil
}

// RatesConfig configures the exchange rate source client.
type RatesConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *RatesConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("rates URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid rates client timeout: %v", c.Timeout)
	}
	return nil
}

// PaymentsConfig configures the payment gateway client.
type PaymentsConfig struct {
	URL          string        `koanf:"url"`
	CommerceCode string        `koanf:"commerceCode"`
	APIKey       string        `koanf:"apiKey"`
	ReturnURL    string        `koanf:"returnUrl"`
	Timeout      time.Duration `koanf:"timeout"`
}

func (c *PaymentsConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("payments URL is not configured")
	}
	if c.CommerceCode == "" || c.APIKey == "" {
		return fmt.Errorf("payments credentials are not configured")
	}
	if c.ReturnURL == "" {
		return fmt.Errorf("payments return URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid payments client timeout: %v", c.Timeout)
	}
	return nil
}
