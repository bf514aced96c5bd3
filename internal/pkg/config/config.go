package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging          LoggingConfig          `yaml:"logging"`
	BettingProviders BettingProvidersConfig `yaml:"betting_providers"`
	Browser          BrowserConfig          `yaml:"browser"`
	Scheduler        SchedulerConfig        `yaml:"scheduler"`
	Health           HealthConfig           `yaml:"health"`
	Postgres         PostgresConfig         `yaml:"postgres"`
	Redis            RedisConfig            `yaml:"redis"`
	Kafka            KafkaConfig            `yaml:"kafka"`
	Telegram         TelegramConfig         `yaml:"telegram"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // optional JSON log file, appended
}

// BettingProvidersConfig holds the enable-list and one account section per
// provider, keyed by provider id:
//
//	betting_providers:
//	  enabled: [bet365]
//	  bet365:
//	    username: ${BET365_USERNAME}
//	    password: ${BET365_PASSWORD}
type BettingProvidersConfig struct {
	Enabled  []string                   `yaml:"enabled"`
	Accounts map[string]ProviderAccount `yaml:",inline"`
}

type ProviderAccount struct {
	Username      string  `yaml:"username"`
	Password      string  `yaml:"password"`
	BaseURL       string  `yaml:"base_url"`
	NavigationRPS float64 `yaml:"navigation_rps"` // page navigations per second, 0 = default
}

// Account returns the account section for a provider id (case-insensitive).
func (c BettingProvidersConfig) Account(id string) (ProviderAccount, bool) {
	if c.Accounts == nil {
		return ProviderAccount{}, false
	}
	acc, ok := c.Accounts[strings.ToLower(strings.TrimSpace(id))]
	return acc, ok
}

type BrowserConfig struct {
	Headless    *bool         `yaml:"headless"`
	UserAgent   string        `yaml:"user_agent"`
	ExecPath    string        `yaml:"exec_path"`
	WaitTimeout time.Duration `yaml:"wait_timeout"`
	Debug       bool          `yaml:"debug"`
}

// IsHeadless defaults to true when unset.
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

type SchedulerConfig struct {
	HoursAhead         int           `yaml:"hours_ahead"`
	MaxMatchesPerCycle int           `yaml:"max_matches_per_cycle"`
	ProviderDelay      time.Duration `yaml:"provider_delay"`
	MatchDelay         time.Duration `yaml:"match_delay"`
	CycleInterval      time.Duration `yaml:"cycle_interval"`
	RecoveryInterval   time.Duration `yaml:"recovery_interval"`
	StepTimeout        time.Duration `yaml:"step_timeout"`
	ParallelProviders  bool          `yaml:"parallel_providers"`
	MaxPrice           float64       `yaml:"max_price"` // 0 = no cap
}

type HealthConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// Load reads the YAML config at configPath. A .env file next to the config
// (or in the working directory) is loaded first, and ${VAR} references in
// string values are expanded from the environment.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(configPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, then expands ${VAR} references in the
// decoded string values. A bare $ is kept as written.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.expandEnv()
	config.normalize()
	config.applyDefaults()
	return &config, nil
}

func loadDotEnv(configPath string) error {
	candidates := []string{filepath.Join(filepath.Dir(configPath), ".env"), ".env"}
	for _, p := range candidates {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		return nil
	}
	return nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expand(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

func (c *Config) expandEnv() {
	for _, p := range []*string{
		&c.Logging.File,
		&c.Browser.UserAgent,
		&c.Browser.ExecPath,
		&c.Postgres.DSN,
		&c.Redis.Addr,
		&c.Redis.Password,
		&c.Kafka.Topic,
		&c.Telegram.BotToken,
	} {
		*p = expand(*p)
	}
	for i := range c.BettingProviders.Enabled {
		c.BettingProviders.Enabled[i] = expand(c.BettingProviders.Enabled[i])
	}
	for i := range c.Kafka.Brokers {
		c.Kafka.Brokers[i] = expand(c.Kafka.Brokers[i])
	}
	for id, acc := range c.BettingProviders.Accounts {
		acc.Username = expand(acc.Username)
		acc.Password = expand(acc.Password)
		acc.BaseURL = expand(acc.BaseURL)
		c.BettingProviders.Accounts[id] = acc
	}
}

func (c *Config) normalize() {
	accounts := make(map[string]ProviderAccount, len(c.BettingProviders.Accounts))
	for k, v := range c.BettingProviders.Accounts {
		accounts[strings.ToLower(strings.TrimSpace(k))] = v
	}
	c.BettingProviders.Accounts = accounts
}

func (c *Config) applyDefaults() {
	s := &c.Scheduler
	if s.HoursAhead <= 0 {
		s.HoursAhead = 48
	}
	if s.MaxMatchesPerCycle <= 0 {
		s.MaxMatchesPerCycle = 5
	}
	if s.ProviderDelay <= 0 {
		s.ProviderDelay = time.Second
	}
	if s.MatchDelay <= 0 {
		s.MatchDelay = 2 * time.Second
	}
	if s.CycleInterval <= 0 {
		s.CycleInterval = 30 * time.Minute
	}
	if s.RecoveryInterval <= 0 {
		s.RecoveryInterval = 5 * time.Minute
	}
	if s.StepTimeout <= 0 {
		s.StepTimeout = 2 * time.Minute
	}

	if c.Browser.WaitTimeout <= 0 {
		c.Browser.WaitTimeout = 10 * time.Second
	}
	if c.Browser.UserAgent == "" {
		c.Browser.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"
	}

	if c.Health.ReadHeaderTimeout <= 0 {
		c.Health.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = time.Hour
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "scraped_odds"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
