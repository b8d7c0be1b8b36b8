// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the ledger settings from YAML.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stakeledger/ledger/entity"
)

type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendLevelDB Backend = "leveldb"
	BackendPebble  Backend = "pebble"
)

// Config captures the settings of a ledger.
type Config struct {
	Staking Staking `yaml:"staking"`
	Tokens  Tokens  `yaml:"tokens"`
	Storage Storage `yaml:"storage"`
}

// Staking configures stake reward accrual.
type Staking struct {
	Enabled bool `yaml:"enabled"`
	// StartThreshold is the funding account balance that activates rewards.
	StartThreshold int64 `yaml:"startThreshold"`
	PeriodMins     int64 `yaml:"periodMins"`
	// RewardHistoryNumStoredPeriods bounds how far back rewards are paid.
	RewardHistoryNumStoredPeriods int        `yaml:"rewardHistoryNumStoredPeriods"`
	FundingAccount                entity.Num `yaml:"fundingAccount"`
	// RewardRate is the reward per whole unit staked per period, in tiny units.
	RewardRate      int64 `yaml:"rewardRate"`
	RequireMinStake bool  `yaml:"requireMinStakeToReward"`
}

type Tokens struct {
	Nfts Nfts `yaml:"nfts"`
}

type Nfts struct {
	UseVirtualStorage bool `yaml:"useVirtualStorage"`
}

type Storage struct {
	Backend   Backend `yaml:"backend"`
	Path      string  `yaml:"path"`
	CacheSize int     `yaml:"cacheSize"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Staking: Staking{
			Enabled:                       true,
			StartThreshold:                25_000_000 * 100_000_000,
			PeriodMins:                    1440,
			RewardHistoryNumStoredPeriods: 365,
			FundingAccount:                800,
			RewardRate:                    6_849,
		},
		Storage: Storage{
			Backend:   BackendMemory,
			CacheSize: 4096,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "open config")
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() {
	cfg.Storage.Backend = Backend(strings.ToLower(strings.TrimSpace(string(cfg.Storage.Backend))))
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}
	cfg.Storage.Path = strings.TrimSpace(cfg.Storage.Path)
}

// Validate rejects impossible settings.
func (cfg *Config) Validate() error {
	if err := cfg.Staking.validate(); err != nil {
		return errors.Wrap(err, "staking")
	}
	if err := cfg.Storage.validate(); err != nil {
		return errors.Wrap(err, "storage")
	}
	return nil
}

func (s Staking) validate() error {
	if !s.Enabled {
		return nil
	}
	if s.PeriodMins <= 0 {
		return errors.New("periodMins must be positive")
	}
	if s.RewardHistoryNumStoredPeriods <= 0 {
		return errors.New("rewardHistoryNumStoredPeriods must be positive")
	}
	if s.FundingAccount.IsZero() {
		return errors.New("fundingAccount is required")
	}
	if s.StartThreshold < 0 || s.RewardRate < 0 {
		return errors.New("startThreshold and rewardRate must not be negative")
	}
	return nil
}

func (s Storage) validate() error {
	switch s.Backend {
	case BackendMemory:
	case BackendLevelDB, BackendPebble:
		if s.Path == "" {
			return errors.Errorf("%s backend requires a path", s.Backend)
		}
	default:
		return errors.Errorf("unknown backend %q", s.Backend)
	}
	if s.CacheSize < 0 {
		return errors.New("cacheSize must not be negative")
	}
	return nil
}
