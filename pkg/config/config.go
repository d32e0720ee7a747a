package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DB       PostgresConfig `mapstructure:"db"`
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Birthday BirthdayConfig `mapstructure:"birthday"`

	location *time.Location
}

type PostgresConfig struct {
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Name       string `mapstructure:"name"`
	Password   string `mapstructure:"password"`
	SSL        string `mapstructure:"sslmode"`
	Migrations string `mapstructure:"migrations"`
}

type ServerConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"ginmode"`
}

type TelegramConfig struct {
	Token     string  `mapstructure:"token"`
	ChannelID int64   `mapstructure:"channel_id"`
	AdminIDs  []int64 `mapstructure:"admin_ids"`
}

type BirthdayConfig struct {
	Timezone      string `mapstructure:"timezone"`
	CheckAt       string `mapstructure:"check_at"`
	UpcomingLimit int    `mapstructure:"upcoming_limit"`
}

// Load reads the YAML config at path into a validated Config.
// Every recognized option has a named field; there is no global instance.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.migrations", "./migrations")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.ginmode", "release")
	v.SetDefault("birthday.timezone", "Europe/Berlin")
	v.SetDefault("birthday.check_at", "00:00")
	v.SetDefault("birthday.upcoming_limit", 5)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Telegram.ChannelID == 0 {
		return fmt.Errorf("telegram.channel_id is required")
	}
	if c.DB.Host == "" || c.DB.Name == "" {
		return fmt.Errorf("db.host and db.name are required")
	}
	loc, err := time.LoadLocation(c.Birthday.Timezone)
	if err != nil {
		return fmt.Errorf("birthday.timezone: %w", err)
	}
	c.location = loc
	if _, err := time.Parse("15:04", c.Birthday.CheckAt); err != nil {
		return fmt.Errorf("birthday.check_at: expected HH:MM: %w", err)
	}
	if c.Birthday.UpcomingLimit <= 0 {
		return fmt.Errorf("birthday.upcoming_limit must be positive")
	}
	return nil
}

// Location returns the timezone birthdays are evaluated in.
func (c *Config) Location() *time.Location {
	return c.location
}

// IsAdmin reports whether the given Telegram user ID is a configured admin.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
