package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/cespare/lia"
)

// configEnv names the environment variable consulted for a config file when
// --config is not given.
const configEnv = "LIA_CONFIG"

// Config is the file form of the command-line settings. Flags given
// explicitly override values from the file.
type Config struct {
	lia.Options `yaml:",inline"`

	// Format is the output format: text or yaml.
	Format string `yaml:"format"`
	// Jobs is the number of problems solved concurrently.
	Jobs int `yaml:"jobs"`
	// Trace logs search steps to stderr; Verbose adds state dumps.
	Trace   bool `yaml:"trace"`
	Verbose bool `yaml:"verbose"`
}

func defaultConfig() Config {
	opts := lia.DefaultOptions()
	opts.MaxDepth = 1000
	opts.MaxRounds = 100
	return Config{
		Options: opts,
		Format:  "text",
		Jobs:    runtime.NumCPU(),
	}
}

// loadConfig reads the YAML config at path over the defaults. An empty path
// yields the defaults. Unknown keys are errors.
func loadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want text or yaml)", c.Format)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("invalid job count %d", c.Jobs)
	}
	return c.Options.Validate()
}
