package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/gameconfig-bootstrap/internal/ledger"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/logging"
)

const (
	defaultConfigDir      = ".env"
	defaultWallet         = "~/.config/solana/id.json"
	defaultPollInterval   = 500 * time.Millisecond
	defaultRateLimitRPS   = 10.0
	defaultRateLimitBurst = 5
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	ConfigDir string
	// Cluster is an explicit environment name that wins over the
	// environment signals. Empty means "resolve from signals".
	Cluster        string
	ProgramID      solana.PublicKey
	Wallet         string
	RPCURL         string
	Commitment     rpc.CommitmentType
	PollInterval   time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	LogFormat      string
	Simulate       bool
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	ConfigDir    string        `yaml:"config_dir"`
	Cluster      string        `yaml:"cluster"`
	ProgramID    string        `yaml:"program_id"`
	Wallet       string        `yaml:"wallet"`
	RPCURL       string        `yaml:"rpc_url"`
	Commitment   string        `yaml:"commitment"`
	PollInterval string        `yaml:"poll_interval"`
	LogFormat    string        `yaml:"log_format"`
	RateLimit    yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	ConfigDir      *string
	Cluster        *string
	ProgramID      *string
	Wallet         *string
	RPCURL         *string
	Commitment     *string
	PollInterval   *time.Duration
	RateLimitRPS   *float64
	RateLimitBurst *int
	LogFormat      *string
	Simulate       bool
}

// raw holds settings before parsing and validation.
type raw struct {
	configDir      string
	cluster        string
	programID      string
	wallet         string
	rpcURL         string
	commitment     string
	pollInterval   time.Duration
	rateLimitRPS   float64
	rateLimitBurst int
	logFormat      string
	simulate       bool
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	r := defaults()

	// Environment variables override defaults
	applyEnvConfig(&r)

	// YAML overrides environment variables
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&r, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&r, overrides)
	}

	return validate(r)
}

func defaults() raw {
	return raw{
		configDir:      defaultConfigDir,
		wallet:         defaultWallet,
		commitment:     string(rpc.CommitmentConfirmed),
		pollInterval:   defaultPollInterval,
		rateLimitRPS:   defaultRateLimitRPS,
		rateLimitBurst: defaultRateLimitBurst,
		logFormat:      logging.FormatAuto,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration on top of r.
func applyYAMLConfig(r *raw, yamlCfg *yamlConfig) error {
	setString(&r.configDir, yamlCfg.ConfigDir)
	setString(&r.cluster, yamlCfg.Cluster)
	setString(&r.programID, yamlCfg.ProgramID)
	setString(&r.wallet, yamlCfg.Wallet)
	setString(&r.rpcURL, yamlCfg.RPCURL)
	setString(&r.commitment, yamlCfg.Commitment)
	setString(&r.logFormat, yamlCfg.LogFormat)

	if yamlCfg.PollInterval != "" {
		d, err := time.ParseDuration(yamlCfg.PollInterval)
		if err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
		r.pollInterval = d
	}

	if yamlCfg.RateLimit.RPS != nil {
		r.rateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil {
		r.rateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(r *raw) {
	setString(&r.configDir, os.Getenv("DEPLOY_CONFIG_DIR"))
	setString(&r.programID, os.Getenv("PROGRAM_ID"))
	setString(&r.wallet, os.Getenv("ANCHOR_WALLET"))
	setString(&r.rpcURL, os.Getenv("ANCHOR_PROVIDER_URL"))
	setString(&r.commitment, os.Getenv("COMMITMENT"))
	setString(&r.logFormat, os.Getenv("LOG_FORMAT"))

	if interval := strings.TrimSpace(os.Getenv("POLL_INTERVAL")); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			r.pollInterval = d
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RPC_RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			r.rateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RPC_RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			r.rateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(r *raw, overrides *CLIOverrides) {
	setStringPtr(&r.configDir, overrides.ConfigDir)
	setStringPtr(&r.cluster, overrides.Cluster)
	setStringPtr(&r.programID, overrides.ProgramID)
	setStringPtr(&r.wallet, overrides.Wallet)
	setStringPtr(&r.rpcURL, overrides.RPCURL)
	setStringPtr(&r.commitment, overrides.Commitment)
	setStringPtr(&r.logFormat, overrides.LogFormat)

	if overrides.PollInterval != nil && *overrides.PollInterval != 0 {
		r.pollInterval = *overrides.PollInterval
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		r.rateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		r.rateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.Simulate {
		r.simulate = true
	}
}

// validate parses and checks the merged settings.
func validate(r raw) (Config, error) {
	if r.programID == "" {
		return Config{}, fmt.Errorf("program id is required (set PROGRAM_ID, program_id or --program-id)")
	}
	programID, err := solana.PublicKeyFromBase58(r.programID)
	if err != nil {
		return Config{}, fmt.Errorf("program id %q is not a valid public key: %w", r.programID, err)
	}

	commitment, ok := ledger.ParseCommitment(r.commitment)
	if !ok {
		return Config{}, fmt.Errorf("commitment must be one of processed, confirmed, finalized, got %q", r.commitment)
	}

	if r.pollInterval <= 0 {
		return Config{}, fmt.Errorf("poll interval must be > 0")
	}
	if r.rateLimitRPS < 0 {
		return Config{}, fmt.Errorf("RPC_RATE_LIMIT_RPS must be >= 0")
	}
	if r.rateLimitBurst < 0 {
		return Config{}, fmt.Errorf("RPC_RATE_LIMIT_BURST must be >= 0")
	}
	if !logging.ValidFormat(r.logFormat) {
		return Config{}, fmt.Errorf("log format must be one of json, console, auto, got %q", r.logFormat)
	}
	if r.configDir == "" {
		return Config{}, fmt.Errorf("config dir cannot be empty")
	}

	return Config{
		ConfigDir:      r.configDir,
		Cluster:        r.cluster,
		ProgramID:      programID,
		Wallet:         r.wallet,
		RPCURL:         r.rpcURL,
		Commitment:     commitment,
		PollInterval:   r.pollInterval,
		RateLimitRPS:   r.rateLimitRPS,
		RateLimitBurst: r.rateLimitBurst,
		LogFormat:      r.logFormat,
		Simulate:       r.simulate,
	}, nil
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func setStringPtr(dst *string, value *string) {
	if value != nil {
		setString(dst, *value)
	}
}
