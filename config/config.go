// Package config loads piclaimd's runtime configuration, generalizing the
// teacher's pkg/daemon.Config/DefaultConfig/ProcessConfig shape (flag-driven,
// fields grouped by concern, a single validating pass) to environment
// variables, since piclaimd is a single-process service deployed the way
// Stellar/Horizon-adjacent tools are: configured through the environment,
// not a flag file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// UserAgent identifies piclaimd to the ledger API, mirroring the teacher's
// RivineUserAgent convention of naming the default agent string as a
// package constant.
const UserAgent = "piclaimd-agent"

// Config holds every environment-configurable value (spec.md §6).
type Config struct {
	LedgerBaseURL      string
	NetworkPassphrase  string
	Port               string
	CORSAllowedOrigins []string

	MaxLogs int

	PrepWindow    time.Duration
	PostWindow    time.Duration
	SeqTTL        time.Duration
	PollInterval  time.Duration
	SweepInterval time.Duration

	TxFee      uint64
	TxValidity time.Duration

	WalletDBPath  string
	BalanceDBPath string
}

// DefaultConfig returns piclaimd's default configuration (spec.md §6).
func DefaultConfig() Config {
	return Config{
		LedgerBaseURL:      "https://api.mainnet.minepi.com",
		NetworkPassphrase:  "Pi Network",
		Port:               "8080",
		CORSAllowedOrigins: nil,

		MaxLogs: 500,

		PrepWindow:    2000 * time.Millisecond,
		PostWindow:    5 * time.Millisecond,
		SeqTTL:        30000 * time.Millisecond,
		PollInterval:  5 * time.Minute,
		SweepInterval: 2 * time.Minute,

		TxFee:      1000000,
		TxValidity: 120 * time.Second,
	}
}

// FromEnv builds a Config by overlaying environment variables onto
// DefaultConfig, mirroring the teacher's ProcessConfig: take the defaults,
// apply overrides, then validate once at the end.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("LEDGER_BASE_URL"); ok {
		cfg.LedgerBaseURL = v
	}
	if v, ok := os.LookupEnv("NETWORK_PASSPHRASE"); ok {
		cfg.NetworkPassphrase = v
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		cfg.Port = v
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		cfg.CORSAllowedOrigins = origins
	}
	if v, ok := os.LookupEnv("WALLET_DB_PATH"); ok {
		cfg.WalletDBPath = v
	}
	if v, ok := os.LookupEnv("BALANCE_DB_PATH"); ok {
		cfg.BalanceDBPath = v
	}

	var err error
	if cfg.MaxLogs, err = intEnv("MAX_LOGS", cfg.MaxLogs); err != nil {
		return Config{}, err
	}
	if cfg.PrepWindow, err = durationMsEnv("PREP_MS", cfg.PrepWindow); err != nil {
		return Config{}, err
	}
	if cfg.PostWindow, err = durationMsEnv("POST_MS", cfg.PostWindow); err != nil {
		return Config{}, err
	}
	if cfg.SeqTTL, err = durationMsEnv("SEQ_TTL_MS", cfg.SeqTTL); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = durationEnv("POLL_INTERVAL", cfg.PollInterval); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", cfg.SweepInterval); err != nil {
		return Config{}, err
	}
	var fee int
	if fee, err = intEnv("TX_FEE", int(cfg.TxFee)); err != nil {
		return Config{}, err
	}
	cfg.TxFee = uint64(fee)
	if cfg.TxValidity, err = durationSecEnv("TX_VALIDITY_S", cfg.TxValidity); err != nil {
		return Config{}, err
	}

	return Validate(cfg)
}

// Validate checks that cfg describes a usable daemon, the same shape of
// check the teacher's VerifyAPISecurity performs on its own Config before
// the daemon binds a port.
func Validate(cfg Config) (Config, error) {
	if cfg.LedgerBaseURL == "" {
		return Config{}, fmt.Errorf("config: LEDGER_BASE_URL must not be empty")
	}
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("config: PORT must not be empty")
	}
	if cfg.MaxLogs <= 0 {
		return Config{}, fmt.Errorf("config: MAX_LOGS must be positive")
	}
	if cfg.SeqTTL <= 0 {
		return Config{}, fmt.Errorf("config: SEQ_TTL_MS must be positive")
	}
	if cfg.TxFee == 0 {
		return Config{}, fmt.Errorf("config: TX_FEE must be positive")
	}
	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", name, err)
	}
	return n, nil
}

func durationMsEnv(name string, fallback time.Duration) (time.Duration, error) {
	v, err := intEnv(name, int(fallback/time.Millisecond))
	if err != nil {
		return 0, err
	}
	return time.Duration(v) * time.Millisecond, nil
}

func durationSecEnv(name string, fallback time.Duration) (time.Duration, error) {
	v, err := intEnv(name, int(fallback/time.Second))
	if err != nil {
		return 0, err
	}
	return time.Duration(v) * time.Second, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a Go duration string (e.g. \"5m\"): %w", name, err)
	}
	return d, nil
}
