package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"casino/economy-bot/database"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"` // Primary Discord guild ID, commands are registered globally when empty

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// NATS configuration
	NATSEnabled bool   `env:"NATS_ENABLED" envDefault:"true"`
	NATSServers string `env:"NATS_SERVERS" envDefault:"nats://nats:4222"`
	// Economy stream retention and redelivery of failed handlers
	NATSStreamMaxAge    time.Duration `env:"NATS_STREAM_MAX_AGE" envDefault:"168h"`
	NATSDuplicateWindow time.Duration `env:"NATS_DUPLICATE_WINDOW" envDefault:"2m"`
	NATSMaxDeliver      int           `env:"NATS_MAX_DELIVER" envDefault:"5"`
	NATSAckWait         time.Duration `env:"NATS_ACK_WAIT" envDefault:"30s"`

	// Admin HTTP API
	AdminAPIPort int `env:"ADMIN_API_PORT" envDefault:"8899"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "text" or "json"

	// OpenTelemetry metrics
	OTelEnabled              bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelServiceName          string `env:"OTEL_SERVICE_NAME" envDefault:"economy-bot"`
	OTelExporterType         string `env:"OTEL_EXPORTER_TYPE" envDefault:"console"` // console, otlp, none
	OTelOTLPEndpoint         string `env:"OTEL_OTLP_ENDPOINT" envDefault:"otel-collector:4317"`
	OTelExportIntervalMillis int    `env:"OTEL_EXPORT_INTERVAL_MILLIS" envDefault:"30000"`

	// Game and command tuning
	Work      IncomeConfig    `envPrefix:"WORK_"`
	Crime     IncomeConfig    `envPrefix:"CRIME_"`
	Hustle    IncomeConfig    `envPrefix:"HUSTLE_"`
	Collect   CollectConfig   `envPrefix:"COLLECT_"`
	Pay       PayConfig       `envPrefix:"PAY_"`
	Rob       RobConfig       `envPrefix:"ROB_"`
	Shop      ShopConfig      `envPrefix:"SHOP_"`
	Blackjack BlackjackConfig `envPrefix:"BLACKJACK_"`
	Roulette  RouletteConfig  `envPrefix:"ROULETTE_"`
	Cockfight CockfightConfig `envPrefix:"COCKFIGHT_"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

// IncomeConfig tunes one of the work/crime/hustle earn commands
type IncomeConfig struct {
	SuccessChance  float64       `env:"SUCCESS_CHANCE" envDefault:"0.5"`
	MinReward      int64         `env:"MIN_REWARD" envDefault:"100"`
	MaxReward      int64         `env:"MAX_REWARD" envDefault:"500"`
	MinFinePercent float64       `env:"MIN_FINE" envDefault:"5"`
	MaxFinePercent float64       `env:"MAX_FINE" envDefault:"10"`
	Cooldown       time.Duration `env:"COOLDOWN" envDefault:"1h"`
}

// RoleIncome is a periodic payout attached to a role
type RoleIncome struct {
	RoleID   int64
	Reward   int64
	Cooldown time.Duration
	ToBank   bool
}

// CollectConfig lists the role incomes available to /collect.
// ROLES has the form "roleID:reward:cooldownSeconds:cash|bank,...".
type CollectConfig struct {
	Roles   string       `env:"ROLES"`
	Incomes []RoleIncome `env:"-"`
}

// PayConfig tunes player to player payments
type PayConfig struct {
	Cooldown          time.Duration `env:"COOLDOWN" envDefault:"3s"`
	MinAmount         int64         `env:"MIN_AMOUNT" envDefault:"1"`
	MaxAmount         int64         `env:"MAX_AMOUNT" envDefault:"1000"`
	TaxPercent        float64       `env:"TAX_PERCENTAGE" envDefault:"10"`
	ReducedTaxPercent float64       `env:"REDUCE_TAX_PERCENTAGE" envDefault:"5"`
	ReducedTaxRoles   []int64       `env:"REDUCE_TAX_ROLES" envSeparator:","`
	BannedRoles       []int64       `env:"BANNED_ROLES" envSeparator:","`
}

// RobConfig tunes robberies
type RobConfig struct {
	MinFinePercent float64       `env:"MIN_FINE" envDefault:"10"`
	MaxFinePercent float64       `env:"MAX_FINE" envDefault:"25"`
	Cooldown       time.Duration `env:"COOLDOWN" envDefault:"15s"`
	ImmuneRoles    []int64       `env:"IMMUNE_ROLES" envSeparator:","`
}

// ShopConfig tunes the shop
type ShopConfig struct {
	BuyCooldown time.Duration `env:"BUY_COOLDOWN" envDefault:"3s"`
}

// BlackjackConfig tunes the card game
type BlackjackConfig struct {
	MinBet  int64         `env:"MIN_BET" envDefault:"10"`
	Decks   int           `env:"DECKS" envDefault:"1"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"300s"`
}

// RouletteConfig tunes the wheel game
type RouletteConfig struct {
	MinBet   int64         `env:"MIN_BET" envDefault:"100"`
	Duration time.Duration `env:"DURATION" envDefault:"30s"`
}

// CockfightConfig tunes the cockfight game
type CockfightConfig struct {
	MinBet      int64  `env:"MIN_BET" envDefault:"10"`
	MinChance   int    `env:"MIN_CHANCE" envDefault:"50"`
	MaxChance   int    `env:"MAX_CHANCE" envDefault:"90"`
	ChickenItem string `env:"CHICKEN_ITEM" envDefault:"Chicken"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
				instance.DiscordToken = "test-token"
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	incomes, err := ParseRoleIncomes(config.Collect.Roles)
	if err != nil {
		return nil, err
	}
	config.Collect.Incomes = incomes

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseRoleIncomes parses the COLLECT_ROLES list
func ParseRoleIncomes(raw string) ([]RoleIncome, error) {
	var incomes []RoleIncome
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("invalid collect role entry %q: expected roleID:reward:cooldown:cash|bank", entry)
		}

		roleID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid collect role id %q: %w", parts[0], err)
		}
		reward, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || reward <= 0 {
			return nil, fmt.Errorf("invalid collect reward %q for role %d", parts[1], roleID)
		}
		seconds, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || seconds < 0 {
			return nil, fmt.Errorf("invalid collect cooldown %q for role %d", parts[2], roleID)
		}

		var toBank bool
		switch parts[3] {
		case "cash":
		case "bank":
			toBank = true
		default:
			return nil, fmt.Errorf("invalid collect reward type %q for role %d", parts[3], roleID)
		}

		incomes = append(incomes, RoleIncome{
			RoleID:   roleID,
			Reward:   reward,
			Cooldown: time.Duration(seconds) * time.Second,
			ToBank:   toBank,
		})
	}
	return incomes, nil
}

// Validate checks every tuning value so a bad deployment fails at startup
func (c *Config) Validate() error {
	for name, income := range map[string]IncomeConfig{"work": c.Work, "crime": c.Crime, "hustle": c.Hustle} {
		if income.SuccessChance < 0 || income.SuccessChance > 1 {
			return fmt.Errorf("%s: success chance must be between 0 and 1", name)
		}
		if income.MinReward < 0 || income.MinReward > income.MaxReward {
			return fmt.Errorf("%s: reward range %d-%d is invalid", name, income.MinReward, income.MaxReward)
		}
		if err := validatePercentRange(name, income.MinFinePercent, income.MaxFinePercent); err != nil {
			return err
		}
		if income.Cooldown < 0 {
			return fmt.Errorf("%s: cooldown cannot be negative", name)
		}
	}

	if err := validatePercentRange("rob", c.Rob.MinFinePercent, c.Rob.MaxFinePercent); err != nil {
		return err
	}
	if c.Rob.Cooldown < 0 {
		return fmt.Errorf("rob: cooldown cannot be negative")
	}

	if c.Pay.TaxPercent < 0 || c.Pay.TaxPercent > 100 || c.Pay.ReducedTaxPercent < 0 || c.Pay.ReducedTaxPercent > 100 {
		return fmt.Errorf("pay: tax percentages must be between 0 and 100")
	}
	if c.Pay.MinAmount < 1 || c.Pay.MinAmount > c.Pay.MaxAmount {
		return fmt.Errorf("pay: amount range %d-%d is invalid", c.Pay.MinAmount, c.Pay.MaxAmount)
	}

	if c.Blackjack.MinBet < 1 {
		return fmt.Errorf("blackjack: min bet must be at least 1")
	}
	if c.Blackjack.Decks < 1 {
		return fmt.Errorf("blackjack: decks must be at least 1")
	}
	if c.Blackjack.Timeout <= 0 {
		return fmt.Errorf("blackjack: timeout must be positive")
	}

	if c.Roulette.Duration < 10*time.Second {
		return fmt.Errorf("roulette: duration must be at least 10s")
	}
	if c.Roulette.MinBet < 1 {
		return fmt.Errorf("roulette: min bet must be at least 1")
	}

	if c.Cockfight.MinBet < 1 {
		return fmt.Errorf("cockfight: min bet must be at least 1")
	}
	if c.Cockfight.MinChance < 0 || c.Cockfight.MinChance > c.Cockfight.MaxChance || c.Cockfight.MaxChance > 100 {
		return fmt.Errorf("cockfight: chance range %d-%d is invalid", c.Cockfight.MinChance, c.Cockfight.MaxChance)
	}

	return nil
}

func validatePercentRange(name string, min, max float64) error {
	if min < 0 || min > 100 || max < 0 || max > 100 {
		return fmt.Errorf("%s: fine percentages must be between 0 and 100", name)
	}
	if min > max {
		return fmt.Errorf("%s: min fine cannot be greater than max fine", name)
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a config with the production defaults, suitable for unit tests
func NewTestConfig() *Config {
	income := IncomeConfig{
		SuccessChance:  0.5,
		MinReward:      100,
		MaxReward:      500,
		MinFinePercent: 5,
		MaxFinePercent: 10,
		Cooldown:       time.Hour,
	}
	return &Config{
		Environment:              "test",
		NATSEnabled:              false,
		NATSStreamMaxAge:         7 * 24 * time.Hour,
		NATSDuplicateWindow:      2 * time.Minute,
		NATSMaxDeliver:           5,
		NATSAckWait:              30 * time.Second,
		AdminAPIPort:             8899,
		LogLevel:                 "info",
		LogFormat:                "text",
		OTelServiceName:          "economy-bot",
		OTelExporterType:         "none",
		OTelExportIntervalMillis: 30000,
		Work:                     income,
		Crime:                    income,
		Hustle:                   income,
		Pay: PayConfig{
			Cooldown:          3 * time.Second,
			MinAmount:         1,
			MaxAmount:         1000,
			TaxPercent:        10,
			ReducedTaxPercent: 5,
		},
		Rob: RobConfig{
			MinFinePercent: 10,
			MaxFinePercent: 25,
			Cooldown:       15 * time.Second,
		},
		Shop:      ShopConfig{BuyCooldown: 3 * time.Second},
		Blackjack: BlackjackConfig{MinBet: 10, Decks: 1, Timeout: 300 * time.Second},
		Roulette:  RouletteConfig{MinBet: 100, Duration: 30 * time.Second},
		Cockfight: CockfightConfig{MinBet: 10, MinChance: 50, MaxChance: 90, ChickenItem: "Chicken"},
	}
}
