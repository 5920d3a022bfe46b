// Package config loads srcfix settings from an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"srcfix/internal/normalize"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = ".srcfix.yaml"

// EnvVar names a config file to use instead of DefaultFile.
const EnvVar = "SRCFIX_CONFIG"

// Config holds the settings a flag can override.
type Config struct {
	// Encodings is the ordered candidate list for normalize.
	Encodings []string `yaml:"encodings"`
	// Atomic writes through a temp file and rename.
	Atomic bool `yaml:"atomic"`
	// EOL terminates replacement lines that lack one: auto, lf or crlf.
	EOL string `yaml:"eol"`
	// Color is auto, always or never.
	Color string `yaml:"color"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Encodings: append([]string(nil), normalize.DefaultNames...),
		EOL:       "auto",
		Color:     "auto",
	}
}

// Load reads the config at path. With an empty path it tries $SRCFIX_CONFIG
// and then DefaultFile; a missing implicit file just yields Default().
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvVar); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultFile
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default() and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated fields and that every encoding is known.
func (c Config) Validate() error {
	switch c.EOL {
	case "auto", "lf", "crlf":
	default:
		return fmt.Errorf("eol must be auto, lf or crlf, got %q", c.EOL)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if len(c.Encodings) == 0 {
		return errors.New("encodings must not be empty")
	}
	if _, err := normalize.Resolve(c.Encodings); err != nil {
		return err
	}
	return nil
}

// Terminator returns the line terminator for the EOL setting, using detected
// (the target file's own terminator) for "auto".
func (c Config) Terminator(detected string) string {
	switch c.EOL {
	case "lf":
		return "\n"
	case "crlf":
		return "\r\n"
	}
	return detected
}
