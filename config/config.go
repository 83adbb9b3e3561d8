package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"gigescrow/crypto"
	"gigescrow/native/dispute"
)

// Config captures the daemon's runtime configuration.
type Config struct {
	RPCAddress   string `toml:"RPCAddress"`
	RPCAuthToken string `toml:"RPCAuthToken"`
	DataDir      string `toml:"DataDir"`
	EventDBPath  string `toml:"EventDBPath"`
	Environment  string `toml:"Environment"`

	Dispute   DisputeConfig   `toml:"dispute"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
}

// RateLimitConfig bounds per-client request rates on the RPC listener. A
// zero RequestsPerMinute disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute float64 `toml:"RequestsPerMinute"`
	Burst             int     `toml:"Burst"`
}

// DisputeConfig holds the externally settable dispute registry parameters.
// Amounts are decimal strings to survive values beyond 64 bits.
type DisputeConfig struct {
	MinStake            string `toml:"MinStake"`
	VotingPeriodSeconds uint64 `toml:"VotingPeriodSeconds"`
	Quorum              uint64 `toml:"Quorum"`
	RewardPerVote       string `toml:"RewardPerVote"`
	Authority           string `toml:"Authority"`
	RewardTreasury      string `toml:"RewardTreasury"`
}

func defaultConfig() *Config {
	return &Config{
		RPCAddress:  "127.0.0.1:8645",
		DataDir:     "./gigescrow-data",
		EventDBPath: "./gigescrow-data/events.db",
		Environment: "local",
		Dispute: DisputeConfig{
			MinStake:            "1000",
			VotingPeriodSeconds: 3 * 24 * 60 * 60,
			Quorum:              3,
			RewardPerVote:       "10",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 600,
			Burst:             50,
		},
	}
}

// Load loads the configuration from the given path, writing the defaults on
// first run.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	if _, err := c.Dispute.minStake(); err != nil {
		return err
	}
	if _, err := c.Dispute.rewardPerVote(); err != nil {
		return err
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("config: ratelimit.RequestsPerMinute must not be negative")
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("config: ratelimit.Burst must not be negative")
	}
	if c.Dispute.VotingPeriodSeconds == 0 {
		return fmt.Errorf("config: dispute.VotingPeriodSeconds must be positive")
	}
	if c.Dispute.Quorum == 0 {
		return fmt.Errorf("config: dispute.Quorum must be positive")
	}
	if c.Dispute.Authority != "" {
		if _, err := crypto.DecodeAddressBytes(c.Dispute.Authority); err != nil {
			return fmt.Errorf("config: dispute.Authority: %w", err)
		}
	}
	if c.Dispute.RewardTreasury != "" {
		if _, err := crypto.DecodeAddressBytes(c.Dispute.RewardTreasury); err != nil {
			return fmt.Errorf("config: dispute.RewardTreasury: %w", err)
		}
	}
	return nil
}

func (d DisputeConfig) minStake() (*big.Int, error) {
	return parseAmount("dispute.MinStake", d.MinStake)
}

func (d DisputeConfig) rewardPerVote() (*big.Int, error) {
	return parseAmount("dispute.RewardPerVote", d.RewardPerVote)
}

func parseAmount(field, raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("config: %s must be a non-negative decimal amount", field)
	}
	return value, nil
}

// DisputeParams converts the configuration section into engine parameters.
// Callers should Validate first.
func (c *Config) DisputeParams() (dispute.Params, error) {
	minStake, err := c.Dispute.minStake()
	if err != nil {
		return dispute.Params{}, err
	}
	reward, err := c.Dispute.rewardPerVote()
	if err != nil {
		return dispute.Params{}, err
	}
	return dispute.Params{
		MinStake:            minStake,
		VotingPeriodSeconds: c.Dispute.VotingPeriodSeconds,
		Quorum:              c.Dispute.Quorum,
		RewardPerVote:       reward,
	}, nil
}

// AuthorityAddress returns the configured administrative address, if any.
func (c *Config) AuthorityAddress() ([20]byte, bool, error) {
	if strings.TrimSpace(c.Dispute.Authority) == "" {
		return [20]byte{}, false, nil
	}
	addr, err := crypto.DecodeAddressBytes(c.Dispute.Authority)
	if err != nil {
		return [20]byte{}, false, err
	}
	return addr, true, nil
}

// RewardTreasuryAddress returns the configured treasury address, if any.
func (c *Config) RewardTreasuryAddress() ([20]byte, bool, error) {
	if strings.TrimSpace(c.Dispute.RewardTreasury) == "" {
		return [20]byte{}, false, nil
	}
	addr, err := crypto.DecodeAddressBytes(c.Dispute.RewardTreasury)
	if err != nil {
		return [20]byte{}, false, err
	}
	return addr, true, nil
}
