package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Feed       FeedConfig       `yaml:"feed"`
	Booking    BookingConfig    `yaml:"booking"`
	Rooms      []RoomConfig     `yaml:"rooms" validate:"min=1,dive"`
	Staff      StaffConfig      `yaml:"staff"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec" validate:"gt=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" validate:"min=1"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" validate:"oneof=postgres sqlite"`
	DSN                    string `yaml:"dsn" validate:"required"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnforceRoomExclusion   bool   `yaml:"enforce_room_exclusion"`
}

// FeedConfig controls how the live reservation feed is kept fresh.
type FeedConfig struct {
	PollIntervalSeconds int           `yaml:"poll_interval_seconds"`
	PollInterval        time.Duration `yaml:"-"`
	TickSeconds         int           `yaml:"tick_seconds"`
	Tick                time.Duration `yaml:"-"`
	RedisAddr           string        `yaml:"redis_addr"`
	RedisChannel        string        `yaml:"redis_channel"`
}

// BookingConfig describes the bookable slots.
type BookingConfig struct {
	Timezone    string         `yaml:"timezone"`
	SlotHours   []int          `yaml:"slot_hours" validate:"min=1,dive,min=0,max=23"`
	SlotMinutes int            `yaml:"slot_minutes" validate:"min=1,max=1440"`
	SlotLength  time.Duration  `yaml:"-"`
	Location    *time.Location `yaml:"-"`
}

// RoomConfig is a bookable room and its place on the floor plan.
type RoomConfig struct {
	Label  string  `yaml:"label" json:"label" validate:"required"`
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width" validate:"gte=0"`
	Height float64 `yaml:"height" json:"height" validate:"gte=0"`
}

// StaffConfig configures the staff directory.
type StaffConfig struct {
	Fallback        []string      `yaml:"fallback"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path. Values from a .env file
// in the working directory and from the environment override secrets in the file.
func Load(path string) (*Config, error) {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Environment = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Feed.RedisAddr = v
	}
	if v := os.Getenv("VAPID_PRIVATE_KEY"); v != "" {
		cfg.Push.PrivateKey = v
	}
}

func (cfg *Config) applyDefaults() error {
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Feed.PollIntervalSeconds <= 0 {
		cfg.Feed.PollIntervalSeconds = 5
	}
	cfg.Feed.PollInterval = time.Duration(cfg.Feed.PollIntervalSeconds) * time.Second
	if cfg.Feed.TickSeconds <= 0 {
		cfg.Feed.TickSeconds = 30
	}
	cfg.Feed.Tick = time.Duration(cfg.Feed.TickSeconds) * time.Second

	if len(cfg.Booking.SlotHours) == 0 {
		cfg.Booking.SlotHours = []int{8, 9, 10, 11, 14, 15, 16, 17}
	}
	if cfg.Booking.SlotMinutes <= 0 {
		cfg.Booking.SlotMinutes = 60
	}
	cfg.Booking.SlotLength = time.Duration(cfg.Booking.SlotMinutes) * time.Minute

	loc := time.Local
	if cfg.Booking.Timezone != "" {
		l, err := time.LoadLocation(cfg.Booking.Timezone)
		if err != nil {
			return fmt.Errorf("failed to load timezone %q: %w", cfg.Booking.Timezone, err)
		}
		loc = l
	}
	cfg.Booking.Location = loc

	if len(cfg.Rooms) == 0 {
		cfg.Rooms = DefaultRooms()
	}

	if cfg.Staff.CacheTTLSeconds <= 0 {
		cfg.Staff.CacheTTLSeconds = 60
	}
	cfg.Staff.CacheTTL = time.Duration(cfg.Staff.CacheTTLSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
	return nil
}

// Validate checks field constraints and that room labels are unique.
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	seen := make(map[string]bool, len(cfg.Rooms))
	for _, r := range cfg.Rooms {
		if seen[r.Label] {
			return errors.New("invalid configuration: duplicate room label " + r.Label)
		}
		seen[r.Label] = true
	}
	return nil
}

// RoomLabels returns the configured room labels in floor plan order.
func (cfg *Config) RoomLabels() []string {
	labels := make([]string, len(cfg.Rooms))
	for i, r := range cfg.Rooms {
		labels[i] = r.Label
	}
	return labels
}

// DefaultRooms is the floor plan used when the configuration lists no rooms.
func DefaultRooms() []RoomConfig {
	return []RoomConfig{
		{Label: "Sala 1", X: 50, Y: 60, Width: 220, Height: 90},
		{Label: "Sala 2", X: 290, Y: 60, Width: 220, Height: 90},
		{Label: "Sala 3", X: 530, Y: 60, Width: 220, Height: 90},
		{Label: "Sala 4", X: 50, Y: 170, Width: 140, Height: 90},
		{Label: "Sala 5", X: 210, Y: 170, Width: 140, Height: 90},
		{Label: "Sala 6", X: 50, Y: 280, Width: 140, Height: 90},
		{Label: "Sala 7", X: 210, Y: 280, Width: 140, Height: 90},
		{Label: "Sala 8", X: 370, Y: 280, Width: 140, Height: 90},
		{Label: "Sala 9", X: 530, Y: 280, Width: 140, Height: 90},
		{Label: "Sala 10 / Espaço", X: 490, Y: 390, Width: 260, Height: 140},
		{Label: "Sala 11", X: 50, Y: 550, Width: 140, Height: 90},
		{Label: "Sala 12", X: 210, Y: 550, Width: 140, Height: 90},
		{Label: "Sala 13", X: 370, Y: 550, Width: 140, Height: 90},
		{Label: "Sala 14", X: 690, Y: 170, Width: 60, Height: 90},
		{Label: "Sala 15", X: 690, Y: 280, Width: 60, Height: 90},
		{Label: "JARDIM", X: 370, Y: 170, Width: 140, Height: 90},
		{Label: "Aquário", X: 530, Y: 170, Width: 140, Height: 90},
		{Label: "Salão Sensorial", X: 50, Y: 390, Width: 420, Height: 140},
	}
}
