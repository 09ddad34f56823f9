package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

// ContextServerConfig describes a context server declared in the config file.
type ContextServerConfig struct {
	Command     string            `yaml:"command"`
	Args        []string          `yaml:"args"`
	Env         map[string]string `yaml:"env"`
	Description string            `yaml:"description"`
	Disabled    bool              `yaml:"disabled"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	Server  HTTPConfig    `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`

	// Servers is read straight from YAML: viper folds map keys to lower
	// case, and server ids and env var names are case-sensitive.
	Servers map[string]ContextServerConfig `mapstructure:"-"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Load reads ctxlaunch.yaml from the working directory or $HOME/.ctxlaunch.
// A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("ctxlaunch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.ctxlaunch")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return finish(v)
}

// LoadFile reads the config from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CTXLAUNCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.db_path", filepath.Join(os.Getenv("HOME"), ".ctxlaunch", "ctxlaunch.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.File = v.ConfigFileUsed()
	if cfg.File != "" {
		servers, err := readServers(cfg.File)
		if err != nil {
			return nil, err
		}
		cfg.Servers = servers
	}
	return &cfg, nil
}

func readServers(path string) (map[string]ContextServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var doc struct {
		Servers map[string]ContextServerConfig `yaml:"servers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing servers in %s: %w", path, err)
	}

	// Expand environment variable references like ${VAR}
	for id, s := range doc.Servers {
		for k, val := range s.Env {
			s.Env[k] = expandEnv(val)
		}
		doc.Servers[id] = s
	}
	return doc.Servers, nil
}

func expandEnv(v string) string {
	if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
		return os.Getenv(v[2 : len(v)-1])
	}
	return v
}

// DisabledIDs returns the identifiers marked disabled, sorted. A disabled
// identifier is removed from the registry even when a builtin defines it.
func (c *Config) DisabledIDs() []string {
	var ids []string
	for id, s := range c.Servers {
		if s.Disabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Entries returns the enabled configured servers as registry entries,
// sorted by identifier.
func (c *Config) Entries() []launch.Entry {
	ids := make([]string, 0, len(c.Servers))
	for id := range c.Servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var entries []launch.Entry
	for _, id := range ids {
		s := c.Servers[id]
		if s.Disabled {
			continue
		}
		entries = append(entries, launch.Entry{
			ID:          id,
			Executable:  s.Command,
			Args:        s.Args,
			Env:         s.Env,
			Description: s.Description,
		})
	}
	return entries
}
