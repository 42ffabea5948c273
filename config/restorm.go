package config

import (
	"fmt"
	"sort"

	"github.com/kbukum/restorm/httpclient"
	"github.com/kbukum/restorm/observability"
	"github.com/kbukum/restorm/validation"
)

// ServiceName is the default service name used to resolve config files.
const ServiceName = "restorm"

// Resource describes one remote collection reachable by name.
type Resource struct {
	Path          string `yaml:"path" mapstructure:"path" validate:"required,urlpath"`
	ResultsKey    string `yaml:"results_key" mapstructure:"results_key" validate:"omitempty,identifier"`
	CountKey      string `yaml:"count_key" mapstructure:"count_key" validate:"omitempty,identifier"`
	OrderingParam string `yaml:"ordering_param" mapstructure:"ordering_param" validate:"omitempty,identifier"`
	LimitParam    string `yaml:"limit_param" mapstructure:"limit_param" validate:"omitempty,identifier"`
	OffsetParam   string `yaml:"offset_param" mapstructure:"offset_param" validate:"omitempty,identifier"`
	PageSize      int    `yaml:"page_size" mapstructure:"page_size" validate:"min=0"`
}

// Config is the configuration of a restorm client process.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// API configures the HTTP client shared by all resources.
	API httpclient.Config `yaml:"api" mapstructure:"api"`

	// Telemetry configures OTLP export.
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`

	// ResultsKey is the envelope key used when a resource sets none.
	ResultsKey string `yaml:"results_key" mapstructure:"results_key"`

	// Resources maps short names to collection endpoints.
	Resources map[string]Resource `yaml:"resources" mapstructure:"resources"`
}

// ApplyDefaults fills unset fields across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	if c.API.Name == "" {
		c.API.Name = c.Name + "-api"
	}
	c.API.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	for name, r := range c.Resources {
		if r.ResultsKey == "" {
			r.ResultsKey = c.ResultsKey
		}
		c.Resources[name] = r
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("config.api.base_url is required")
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("config.api: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	for _, name := range c.ResourceNames() {
		if err := validation.Validate(c.Resources[name]); err != nil {
			return fmt.Errorf("config.resources.%s: %w", name, err)
		}
	}
	return nil
}

// Resource returns the named resource. Unknown names resolve to the
// collection at "/<name>" with the default results key.
func (c *Config) Resource(name string) Resource {
	if r, ok := c.Resources[name]; ok {
		return r
	}
	return Resource{Path: "/" + name, ResultsKey: c.ResultsKey}
}

// ResourceNames returns the configured resource names in sorted order.
func (c *Config) ResourceNames() []string {
	names := make([]string, 0, len(c.Resources))
	for name := range c.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
