package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files.
// A missing file yields the defaults.
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	var yamlConfig struct {
		Server ServerYAML `yaml:"server,omitempty"`
		Survey SurveyYAML `yaml:"survey,omitempty"`
	}

	cfgFile, err := os.ReadFile(y.filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
		}
	}

	config := &ConfigData{
		Server: ServerData{
			ListenAddr: yamlConfig.Server.ListenAddr,
			Port:       yamlConfig.Server.Port,
			Cert:       yamlConfig.Server.Cert,
			Key:        yamlConfig.Server.Key,
		},
		Survey: SurveyData{
			DefaultMethod:           yamlConfig.Survey.DefaultMethod,
			DefaultConversionFactor: yamlConfig.Survey.DefaultConversionFactor,
		},
	}
	config.ApplyDefaults()
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// GetServer returns the REST server configuration
func (y *YAMLProvider) GetServer() (*ServerData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Server, nil
}

// GetSurvey returns the survey defaults
func (y *YAMLProvider) GetSurvey() (*SurveyData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Survey, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with kebab-case keys
type ServerYAML struct {
	ListenAddr string `yaml:"listen-addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
}

type SurveyYAML struct {
	DefaultMethod           string  `yaml:"default-method,omitempty"`
	DefaultConversionFactor float64 `yaml:"default-conversion-factor,omitempty"`
}
