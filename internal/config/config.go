// Package config loads the subst CLI configuration: which commands to
// register and how to reach the remote backends. Values come from an
// optional YAML file merged over built-in defaults.
package config

import (
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Config is the full CLI configuration.
type Config struct {
	// Commands lists the command identifiers to register. Identifiers the
	// CLI knows: env, sh, file, sockaddr, vault, consul.
	Commands []string `mapstructure:"commands"`

	// Sandbox confines the file command to a directory when set.
	Sandbox string `mapstructure:"sandbox"`

	// DisableCache turns off per-call memoization of structured fetches.
	DisableCache bool `mapstructure:"disable_cache"`

	// CacheFailures keeps failed fetches cached for the remainder of a
	// call instead of retrying them.
	CacheFailures bool `mapstructure:"cache_failures"`

	Vault  Backend `mapstructure:"vault"`
	Consul Backend `mapstructure:"consul"`
}

// Backend holds the client settings for one remote backend.
type Backend struct {
	Address   string `mapstructure:"address"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`

	// vault only
	UnwrapToken bool `mapstructure:"unwrap_token"`

	// consul only
	Datacenter   string `mapstructure:"datacenter"`
	AuthUsername string `mapstructure:"auth_username"`
	AuthPassword string `mapstructure:"auth_password"`

	SSL SSL `mapstructure:"ssl"`
}

// SSL holds the TLS settings for one backend connection.
type SSL struct {
	Enabled    bool   `mapstructure:"enabled"`
	Verify     bool   `mapstructure:"verify"`
	Cert       string `mapstructure:"cert"`
	Key        string `mapstructure:"key"`
	CACert     string `mapstructure:"ca_cert"`
	CAPath     string `mapstructure:"ca_path"`
	ServerName string `mapstructure:"server_name"`
}

// Default returns the configuration used when no file is given: the local
// commands enabled, remote backends off.
func Default() Config {
	return Config{
		Commands: []string{"env", "sh", "file", "sockaddr"},
	}
}

// Load reads the YAML file at path and merges it over Default. An empty
// path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "config")
	}
	return Parse(data)
}

// Parse decodes YAML config bytes and merges them over Default. Decoding
// goes through an untyped map so config keys stay weakly typed, the same
// way the backends' own config files behave.
func Parse(data []byte) (Config, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Default(), errors.Wrap(err, "config: parse")
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Default(), errors.Wrap(err, "config: decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return Default(), errors.Wrap(err, "config: decode")
	}

	// Fill anything the file left unset from the defaults.
	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Default(), errors.Wrap(err, "config: merge")
	}
	return cfg, nil
}
