// Package indexer generates event-processor configuration for published
// code holders.
//
// The pipeline takes event definitions extracted from published packages, a
// database schema, and an event-to-table mapping, and produces a processor
// config YAML binding each event field to its destination columns.
package indexer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ProcessorConfig struct {
	SpecIdentifier SpecIdentifier `yaml:"spec_identifier"`
	CommonConfig   CommonConfig   `yaml:"common_config"`
	CustomConfig   CustomConfig   `yaml:"custom_config"`
}

type SpecIdentifier struct {
	SpecCreator string `yaml:"spec_creator"`
	SpecName    string `yaml:"spec_name"`
	SpecVersion string `yaml:"spec_version"`
}

type CommonConfig struct {
	Network                 string  `yaml:"network"`
	StartingVersion         uint64  `yaml:"starting_version"`
	StartingVersionOverride *uint64 `yaml:"starting_version_override"`
}

type CustomConfig struct {
	DBSchema            map[string]TableSchema    `yaml:"db_schema,omitempty"`
	Events              map[string]EventMapping   `yaml:"events,omitempty"`
	TransactionMetadata map[string][]ColumnTarget `yaml:"transaction_metadata,omitempty"`
	Payload             map[string]any            `yaml:"payload,omitempty"`
	EventMetadata       map[string][]ColumnTarget `yaml:"event_metadata,omitempty"`
}

// TableSchema maps column names to their specifications.
type TableSchema map[string]ColumnSpec

type ColumnSpec struct {
	ColumnType   ColumnTypeSpec `yaml:"column_type"`
	DefaultValue any            `yaml:"default_value,omitempty"`
	IsIndex      bool           `yaml:"is_index"`
	IsNullable   bool           `yaml:"is_nullable"`
	IsOption     bool           `yaml:"is_option"`
	IsPrimaryKey bool           `yaml:"is_primary_key"`
	IsVec        bool           `yaml:"is_vec"`
}

type ColumnTypeSpec struct {
	ColumnType string `yaml:"column_type"`
	Type       string `yaml:"type"`
}

type EventMapping struct {
	ConstantValues []any                     `yaml:"constant_values"`
	EventFields    map[string][]ColumnTarget `yaml:"event_fields"`
	EventMetadata  map[string][]ColumnTarget `yaml:"event_metadata"`
}

type ColumnTarget struct {
	Column string `yaml:"column"`
	Table  string `yaml:"table"`
}

// LoadProcessorConfig reads a processor config from a YAML file.
func LoadProcessorConfig(path string) (ProcessorConfig, error) {
	var cfg ProcessorConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("indexer: parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveProcessorConfig writes a processor config as YAML.
func SaveProcessorConfig(path string, cfg ProcessorConfig) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("indexer: serialize config: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
