package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"holdemtable-server/internal/util"
)

// Config provides configuration for the hold'em table server
type Config struct {
	loaded bool

	SmallBlind     int `yaml:"smallBlind" envconfig:"small_blind"`
	BigBlind       int `yaml:"bigBlind" envconfig:"big_blind"`
	StartingChips  int `yaml:"startingChips" envconfig:"starting_chips"`
	TurnTimeoutSec int `yaml:"turnTimeoutSec" envconfig:"turn_timeout_sec"`

	JWT struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}

	Log struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error; defaults and the environment apply.
func Load() error {
	config = Config{
		SmallBlind:     10,
		BigBlind:       20,
		StartingChips:  1000,
		TurnTimeoutSec: 20,
	}

	configFile := util.Getenv("HOLDEM_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("holdem", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
