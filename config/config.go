package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Reservation ReservationConfig `yaml:"reservation"`
	Telephony   TelephonyConfig   `yaml:"telephony"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Log         LogConfig         `yaml:"log"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
	// PublicBaseURL is the externally reachable origin the telephony provider calls back on.
	PublicBaseURL string `yaml:"public_base_url"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ReservationTopic   string   `yaml:"reservation_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type ReservationConfig struct {
	ExpirySeconds         int `yaml:"expiry_seconds"`
	StatusCacheTTLSeconds int `yaml:"status_cache_ttl_seconds"`
}

func (r ReservationConfig) Expiry() time.Duration {
	return time.Duration(r.ExpirySeconds) * time.Second
}

func (r ReservationConfig) StatusCacheTTL() time.Duration {
	return time.Duration(r.StatusCacheTTLSeconds) * time.Second
}

type TelephonyConfig struct {
	AccountSID         string `yaml:"account_sid"`
	AuthToken          string `yaml:"auth_token"`
	FromNumber         string `yaml:"from_number"`
	CountryCode        string `yaml:"country_code"`
	TrunkPrefix        string `yaml:"trunk_prefix"`
	RingTimeoutSeconds int    `yaml:"ring_timeout_seconds"`
	GatherTimeoutSecs  int    `yaml:"gather_timeout_seconds"`
	Voice              string `yaml:"voice"`
	Language           string `yaml:"language"`
	ValidateSignatures bool   `yaml:"validate_signatures"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig reads the YAML file at path. ${VAR} references are expanded from the
// environment, which is first populated from a .env file when one is present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fills defaults and rejects configurations the call flow cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	c.HTTP.PublicBaseURL = strings.TrimRight(c.HTTP.PublicBaseURL, "/")
	if c.HTTP.PublicBaseURL == "" {
		return errors.New("http.public_base_url is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Reservation.ExpirySeconds <= 0 {
		c.Reservation.ExpirySeconds = 180
	}
	if c.Reservation.StatusCacheTTLSeconds <= 0 {
		c.Reservation.StatusCacheTTLSeconds = 3600
	}
	if c.Telephony.AccountSID == "" || c.Telephony.AuthToken == "" {
		return errors.New("telephony.account_sid and telephony.auth_token are required")
	}
	if c.Telephony.FromNumber == "" {
		return errors.New("telephony.from_number is required")
	}
	if c.Telephony.CountryCode == "" {
		c.Telephony.CountryCode = "82"
	}
	if c.Telephony.TrunkPrefix == "" {
		c.Telephony.TrunkPrefix = "0"
	}
	if c.Telephony.RingTimeoutSeconds <= 0 {
		c.Telephony.RingTimeoutSeconds = 60
	}
	if c.Telephony.GatherTimeoutSecs <= 0 {
		c.Telephony.GatherTimeoutSecs = 10
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = 50
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}
