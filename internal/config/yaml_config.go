package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"aliados/internal/intent"
	"aliados/internal/partners"
)

// YAMLConfig represents the structure of the config.yaml file.
// Hierarchical data that is easier to manage in YAML than env vars.
type YAMLConfig struct {
	Partners []partners.Partner `yaml:"partners"`
	Users    []UserConfig       `yaml:"users"`
	Intents  []intent.Entry     `yaml:"intents"`
}

// UserConfig defines a login in the YAML config. Only bcrypt hashes are
// accepted; see the hash-password command.
type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`                   // admin, partner
	HomePartner  string `yaml:"home_partner,omitempty"` // required for partner users
}

// LoadYAMLConfig loads the YAML configuration file at path.
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Directory returns the partner directory from the file, or the built-in
// one when the file lists no partners.
func (c *YAMLConfig) Directory() *partners.Directory {
	if c == nil || len(c.Partners) == 0 {
		return partners.Default()
	}
	return partners.NewDirectory(c.Partners)
}

// IntentTable returns the keyword table from the file, or the built-in one
// when the file lists no intents.
func (c *YAMLConfig) IntentTable() (intent.Table, error) {
	if c == nil || len(c.Intents) == 0 {
		return intent.DefaultTable(), nil
	}
	t, err := intent.ParseTable(c.Intents)
	if err != nil {
		return nil, fmt.Errorf("%w: intents: %v", ErrInvalidConfig, err)
	}
	return t, nil
}
