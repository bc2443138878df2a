// Package config loads streamflow configuration from pluggable sources.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables that override file configuration
const (
	EnvListenAddr = "STREAMFLOW_LISTEN_ADDR"
	EnvPort       = "STREAMFLOW_PORT"
)

// Defaults applied to missing values
const (
	DefaultListenAddr       = "0.0.0.0"
	DefaultPort             = 8080
	DefaultMethod           = "0.6y"
	DefaultConversionFactor = 0.85
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetServer() (*ServerData, error)
	GetSurvey() (*SurveyData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server ServerData `json:"server"`
	Survey SurveyData `json:"survey"`
}

// ServerData holds the REST server settings
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
}

// Addr is the host:port the server listens on
func (s ServerData) Addr() string {
	return fmt.Sprintf("%v:%v", s.ListenAddr, s.Port)
}

// TLSEnabled reports whether both a certificate and key were configured
func (s ServerData) TLSEnabled() bool {
	return s.Cert != "" && s.Key != ""
}

// SurveyData holds defaults used when a survey or request leaves them out
type SurveyData struct {
	DefaultMethod           string  `json:"default_method,omitempty"`
	DefaultConversionFactor float64 `json:"default_conversion_factor,omitempty"`
}

// ApplyDefaults fills in any values left empty by the source
func (c *ConfigData) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Survey.DefaultMethod == "" {
		c.Survey.DefaultMethod = DefaultMethod
	}
	if c.Survey.DefaultConversionFactor == 0 {
		c.Survey.DefaultConversionFactor = DefaultConversionFactor
	}
}

// ApplyEnv overrides server settings from the environment
func (c *ConfigData) ApplyEnv() error {
	if addr := os.Getenv(EnvListenAddr); addr != "" {
		c.Server.ListenAddr = addr
	}
	if port := os.Getenv(EnvPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, port, err)
		}
		c.Server.Port = p
	}
	return nil
}
