// Package config loads service settings from defaults, an optional YAML file,
// an optional .env file and JORNADA_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/Jornada/internal/game"
	"github.com/soaringjerry/Jornada/internal/services"
	"github.com/soaringjerry/Jornada/internal/utils"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	Addr            string `yaml:"addr"`
	StaticDir       string `yaml:"static_dir"`
	DevFrontendURL  string `yaml:"dev_frontend_url"`
	DefaultLocale   string `yaml:"default_locale"`
	DisplayTimezone string `yaml:"display_timezone"`
	Commit          string `yaml:"-"`
	BuildTime       string `yaml:"-"`

	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Admin  AdminConfig  `yaml:"admin"`
	Game   GameConfig   `yaml:"game"`
	Events EventsConfig `yaml:"events"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	Key           string `yaml:"key"`
	SQLitePath    string `yaml:"sqlite_path"`
	MigrationsDir string `yaml:"migrations_dir"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type AdminConfig struct {
	Password     string        `yaml:"password"`
	PasswordHash string        `yaml:"password_hash"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

type GameConfig struct {
	FinishDelay   time.Duration `yaml:"finish_delay"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	ProfileCells  int           `yaml:"profile_cells"`
	ProfileRows   int           `yaml:"profile_rows"`
	ProfileCols   int           `yaml:"profile_cols"`
	QuizCells     int           `yaml:"quiz_cells"`
	QuizRows      int           `yaml:"quiz_rows"`
	QuizCols      int           `yaml:"quiz_cols"`
	QuizPoolSize  int           `yaml:"quiz_pool_size"`
}

type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

// DefaultAdminPassword matches the browser build's fallback. Validate accepts
// it but Warnings flags it.
const DefaultAdminPassword = "admin123"

func Default() *Config {
	profile, quiz := game.ProfileConfig(), game.QuizConfig()
	return &Config{
		Addr:            ":8080",
		DefaultLocale:   utils.DefaultLocale,
		DisplayTimezone: "America/Sao_Paulo",
		Log:             LogConfig{Level: "info"},
		Store: StoreConfig{
			Driver:     DriverSQLite,
			Key:        services.ReportsKey,
			SQLitePath: "data/jornada.db",
			RedisAddr:  "localhost:6379",
		},
		Admin: AdminConfig{
			Password: DefaultAdminPassword,
			TokenTTL: 8 * time.Hour,
		},
		Game: GameConfig{
			FinishDelay:   profile.FinishDelay,
			SessionTTL:    2 * time.Hour,
			SweepInterval: 5 * time.Minute,
			ProfileCells:  profile.TotalCells,
			ProfileRows:   profile.Layout.Rows,
			ProfileCols:   profile.Layout.Cols,
			QuizCells:     quiz.TotalCells,
			QuizRows:      quiz.Layout.Rows,
			QuizCols:      quiz.Layout.Cols,
			QuizPoolSize:  quiz.PoolSize,
		},
		Events: EventsConfig{Exchange: "jornada.events"},
	}
}

// Load builds the configuration. path may be empty; a missing .env is ignored.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("JORNADA_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Addr = utils.SafeEnv("JORNADA_ADDR", c.Addr)
	c.StaticDir = utils.SafeEnv("JORNADA_STATIC_DIR", c.StaticDir)
	c.DevFrontendURL = utils.SafeEnv("JORNADA_DEV_FRONTEND_URL", c.DevFrontendURL)
	c.DefaultLocale = utils.SafeEnv("JORNADA_DEFAULT_LOCALE", c.DefaultLocale)
	c.DisplayTimezone = utils.SafeEnv("JORNADA_TIMEZONE", c.DisplayTimezone)
	c.Commit = utils.SafeEnv("JORNADA_COMMIT", c.Commit)
	c.BuildTime = utils.SafeEnv("JORNADA_BUILD_TIME", c.BuildTime)

	c.Log.Level = utils.SafeEnv("JORNADA_LOG_LEVEL", c.Log.Level)
	c.Log.Development = utils.EnvBool("JORNADA_LOG_DEV", c.Log.Development)

	c.Store.Driver = strings.ToLower(utils.SafeEnv("JORNADA_STORE_DRIVER", c.Store.Driver))
	c.Store.Key = utils.SafeEnv("JORNADA_STORE_KEY", c.Store.Key)
	c.Store.SQLitePath = utils.SafeEnv("JORNADA_SQLITE_PATH", c.Store.SQLitePath)
	c.Store.MigrationsDir = utils.SafeEnv("JORNADA_MIGRATIONS_DIR", c.Store.MigrationsDir)
	c.Store.RedisAddr = utils.SafeEnv("JORNADA_REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPassword = utils.SafeEnv("JORNADA_REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisDB = utils.EnvInt("JORNADA_REDIS_DB", c.Store.RedisDB)

	// VITE_ADMIN_PASSWORD is what the browser build read; keep honoring it.
	c.Admin.Password = utils.SafeEnv("JORNADA_ADMIN_PASSWORD", utils.SafeEnv("VITE_ADMIN_PASSWORD", c.Admin.Password))
	c.Admin.PasswordHash = utils.SafeEnv("JORNADA_ADMIN_PASSWORD_HASH", c.Admin.PasswordHash)
	c.Admin.JWTSecret = utils.SafeEnv("JORNADA_JWT_SECRET", c.Admin.JWTSecret)
	c.Admin.TokenTTL = utils.EnvDuration("JORNADA_TOKEN_TTL", c.Admin.TokenTTL)

	c.Game.FinishDelay = utils.EnvDuration("JORNADA_FINISH_DELAY", c.Game.FinishDelay)
	c.Game.SessionTTL = utils.EnvDuration("JORNADA_SESSION_TTL", c.Game.SessionTTL)
	c.Game.SweepInterval = utils.EnvDuration("JORNADA_SWEEP_INTERVAL", c.Game.SweepInterval)
	c.Game.ProfileCells = utils.EnvInt("JORNADA_PROFILE_CELLS", c.Game.ProfileCells)
	c.Game.QuizCells = utils.EnvInt("JORNADA_QUIZ_CELLS", c.Game.QuizCells)
	c.Game.QuizPoolSize = utils.EnvInt("JORNADA_QUIZ_POOL_SIZE", c.Game.QuizPoolSize)

	c.Events.AMQPURL = utils.SafeEnv("JORNADA_AMQP_URL", c.Events.AMQPURL)
	c.Events.Exchange = utils.SafeEnv("JORNADA_AMQP_EXCHANGE", c.Events.Exchange)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if !slices.Contains(utils.SupportedLocales, c.DefaultLocale) {
		errs = append(errs, fmt.Errorf("default_locale %q is not one of %v", c.DefaultLocale, utils.SupportedLocales))
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		errs = append(errs, fmt.Errorf("display_timezone: %w", err))
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for the sqlite driver"))
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q must be memory, sqlite or redis", c.Store.Driver))
	}
	if c.Store.Key == "" {
		errs = append(errs, errors.New("store.key is required"))
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("admin.password or admin.password_hash is required"))
	}
	if c.Admin.TokenTTL <= 0 {
		errs = append(errs, errors.New("admin.token_ttl must be positive"))
	}
	if c.Game.FinishDelay < 0 {
		errs = append(errs, errors.New("game.finish_delay must not be negative"))
	}
	if c.Game.SessionTTL <= 0 || c.Game.SweepInterval <= 0 {
		errs = append(errs, errors.New("game.session_ttl and game.sweep_interval must be positive"))
	}
	errs = append(errs, checkBoard("profile", c.Game.ProfileCells, c.Game.ProfileRows, c.Game.ProfileCols)...)
	errs = append(errs, checkBoard("quiz", c.Game.QuizCells, c.Game.QuizRows, c.Game.QuizCols)...)
	if c.Game.QuizPoolSize <= 0 {
		errs = append(errs, errors.New("game.quiz_pool_size must be positive"))
	}
	return errors.Join(errs...)
}

func checkBoard(name string, cells, rows, cols int) []error {
	var errs []error
	if cells <= 0 || rows <= 0 || cols <= 0 {
		return []error{fmt.Errorf("game.%s board needs positive cells, rows and cols", name)}
	}
	if cells%len(game.Categories) != 0 {
		errs = append(errs, fmt.Errorf("game.%s_cells %d is not divisible by %d categories", name, cells, len(game.Categories)))
	}
	if rows*cols < cells {
		errs = append(errs, fmt.Errorf("game.%s grid %dx%d cannot hold %d cells", name, rows, cols, cells))
	}
	return errs
}

// Warnings lists settings that work but should not reach production.
func (c *Config) Warnings() []string {
	var out []string
	if c.Admin.PasswordHash == "" && c.Admin.Password == DefaultAdminPassword {
		out = append(out, "admin password is the default; set JORNADA_ADMIN_PASSWORD or admin.password_hash")
	}
	if c.Admin.JWTSecret == "" {
		out = append(out, "jwt secret not set; a random one is used and admin tokens will not survive restarts")
	}
	if c.Store.Driver == DriverMemory {
		out = append(out, "memory store: reports are lost on restart")
	}
	return out
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) ProfileGame() game.Config {
	g := game.ProfileConfig()
	g.TotalCells = c.Game.ProfileCells
	g.Layout = g.Layout.WithGrid(c.Game.ProfileRows, c.Game.ProfileCols)
	g.FinishDelay = c.Game.FinishDelay
	return g
}

func (c *Config) QuizGame() game.Config {
	g := game.QuizConfig()
	g.TotalCells = c.Game.QuizCells
	g.Layout = g.Layout.WithGrid(c.Game.QuizRows, c.Game.QuizCols)
	g.PoolSize = c.Game.QuizPoolSize
	g.FinishDelay = c.Game.FinishDelay
	return g
}
