package internal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls one compiler run. Keys missing from a loaded file keep the defaults.
type Config struct {
	Out       string `yaml:"out"`
	SkipCheck bool   `yaml:"skip_check"`
	MaxErrors int    `yaml:"max_errors"`
	Prefix    string `yaml:"prefix"`
	Verbose   bool   `yaml:"verbose"`
	Jobs      int    `yaml:"jobs"` // 0 means GOMAXPROCS.
}

func DefaultConfig() *Config {
	return &Config{
		Out:       "out",
		MaxErrors: 1,
		Prefix:    "oberon_",
	}
}

// LoadConfig reads a yaml config on top of DefaultConfig. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	conf := DefaultConfig()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(conf); err != nil {
		if errors.Is(err, io.EOF) {
			return conf, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return conf, nil
}

func (conf *Config) validate() error {
	switch {
	case conf.MaxErrors < 1:
		return fmt.Errorf("max_errors must be at least 1, found %d", conf.MaxErrors)
	case conf.Jobs < 0:
		return fmt.Errorf("jobs must not be negative, found %d", conf.Jobs)
	case conf.Prefix == "":
		return errors.New("prefix must not be empty")
	case conf.Out == "":
		return errors.New("out must not be empty")
	}
	return nil
}
