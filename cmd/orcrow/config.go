package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/orcrow/pkg/jsonrows"
)

// Config is the optional YAML file given with --config. Flags override it.
type Config struct {
	BatchSize   int      `yaml:"batch_size"`
	Columns     []string `yaml:"columns"`
	Pretty      bool     `yaml:"pretty"`
	Compression string   `yaml:"compression"`
	LogLevel    string   `yaml:"log_level"`
	MetricsAddr string   `yaml:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		BatchSize:   1024,
		Compression: jsonrows.CompressionNone,
		LogLevel:    "info",
	}
}

// ParseConfig decodes r over the defaults. Unknown keys are an error.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.Validate()
}

func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}

func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	switch c.Compression {
	case "", jsonrows.CompressionNone, jsonrows.CompressionZstd:
	default:
		return fmt.Errorf("compression must be %q or %q, got %q", jsonrows.CompressionNone, jsonrows.CompressionZstd, c.Compression)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Logger returns a text logger on w at the configured level.
func (c Config) Logger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
