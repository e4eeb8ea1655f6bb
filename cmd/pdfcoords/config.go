package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrcoords/pkg/gdocai"
	"github.com/gardar/ocrcoords/pkg/ocr"
	"github.com/gardar/ocrcoords/pkg/pipeline"
)

type yamlConfig struct {
	// Document AI processor (-pdf input)
	ProjectID       string `yaml:"project_id"`
	Location        string `yaml:"location"`
	ProcessorID     string `yaml:"processor_id"`
	CredentialsFile string `yaml:"credentials_file"`

	// Batch options; command-line flags take precedence
	Region        *ocr.Region   `yaml:"region"`
	From          string        `yaml:"from"`
	To            string        `yaml:"to"`
	Online        *bool         `yaml:"online"`
	Workers       int           `yaml:"workers"`
	MinConfidence *float64      `yaml:"min_confidence"`
	Timeout       time.Duration `yaml:"timeout"`
	Systems       string        `yaml:"systems"`
	Languages     []string      `yaml:"languages"`
}

// loadConfig reads a YAML file. An empty path yields an empty config.
func loadConfig(path string) (yamlConfig, error) {
	var yc yamlConfig
	if path == "" {
		return yc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return yc, err
	}
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return yc, fmt.Errorf("%s: %w", path, err)
	}
	return yc, nil
}

// documentAI converts the processor settings to a Document AI config
func (yc yamlConfig) documentAI() *gdocai.Config {
	return &gdocai.Config{
		ProjectID:       yc.ProjectID,
		Location:        yc.Location,
		ProcessorID:     yc.ProcessorID,
		CredentialsFile: yc.CredentialsFile,
	}
}

// pipelineConfig applies the file settings over the defaults
func (yc yamlConfig) pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	if yc.Region != nil {
		cfg.Region = *yc.Region
	}
	if yc.From != "" {
		cfg.SourceID = yc.From
	}
	if yc.To != "" {
		cfg.TargetID = yc.To
	}
	if yc.Online != nil {
		cfg.AllowExternal = *yc.Online
	}
	if yc.Workers > 0 {
		cfg.Workers = yc.Workers
	}
	if yc.MinConfidence != nil {
		cfg.MinConfidence = *yc.MinConfidence
	}
	if yc.Timeout > 0 {
		cfg.Timeout = yc.Timeout
	}
	return cfg
}
