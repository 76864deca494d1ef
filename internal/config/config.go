package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvHome          = "MEALCAL_HOME"
	EnvLogLevel      = "MEALCAL_LOG_LEVEL"
	EnvTimezone      = "MEALCAL_TIMEZONE"
	EnvPurgeSchedule = "MEALCAL_PURGE_SCHEDULE"
)

// PurgeDisabled as purge_schedule turns the background purge off.
const PurgeDisabled = "off"

// MealTimes holds the local start time (HH:MM) of each meal type,
// used when meals are placed on a calendar.
type MealTimes struct {
	Breakfast string `json:"breakfast,omitempty"`
	Lunch     string `json:"lunch,omitempty"`
	Dinner    string `json:"dinner,omitempty"`
}

// Config holds application configuration.
type Config struct {
	// BaseDir is where the database, exports and global config live.
	// Not read from config.json; set by ResolveBaseDir.
	BaseDir string `json:"-"`

	// WeekStart is the first day of a week view: "monday" (default) or "sunday".
	WeekStart string `json:"week_start,omitempty"`

	// Timezone is an IANA zone name used for "today" and calendar feeds.
	Timezone string `json:"timezone,omitempty"`

	// MealTimes places meals on the calendar feed.
	MealTimes MealTimes `json:"meal_times,omitempty"`

	// PurgeSchedule is a cron expression for purging deleted meals, or "off".
	PurgeSchedule string `json:"purge_schedule,omitempty"`

	// PurgeAfterDays keeps deleted meals this long before the scheduled purge removes them.
	PurgeAfterDays int `json:"purge_after_days,omitempty"`

	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string `json:"log_level,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside <base>/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		WeekStart: "monday",
		Timezone:  "UTC",
		MealTimes: MealTimes{
			Breakfast: "08:00",
			Lunch:     "12:30",
			Dinner:    "19:00",
		},
		PurgeSchedule:  "0 3 * * *",
		PurgeAfterDays: 30,
		LogLevel:       "info",
	}
}

// ResolveBaseDir returns $MEALCAL_HOME, or ~/.mealcal when unset.
func ResolveBaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvHome)); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mealcal"), nil
}

// LoadDotEnv loads variables from the given .env files (default ./.env)
// into the process environment. Missing files are ignored; variables already
// set in the environment are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.mealcal.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = baseDir
	return cfg, nil
}

// LoadWithRepo loads configuration from both global (~/.mealcal) and repo (.mealcal) directories.
// Repo config is found by walking upward from startDir to find the nearest .mealcal/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Environment overrides are applied last. Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := ApplyEnv(Merge(Merge(DefaultConfig(), global), repo))
	cfg.BaseDir = globalDir
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .mealcal/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".mealcal", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ApplyEnv overrides cfg with any MEALCAL_* variables set in the environment.
func ApplyEnv(cfg *Config) *Config {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimezone)); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPurgeSchedule)); v != "" {
		cfg.PurgeSchedule = v
	}
	return cfg
}

// Validate checks values that cannot be checked by JSON decoding alone.
func (c *Config) Validate() error {
	switch strings.ToLower(c.WeekStart) {
	case "", "monday", "sunday":
	default:
		return fmt.Errorf("week_start must be monday or sunday, got %q", c.WeekStart)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for _, hm := range []string{c.MealTimes.Breakfast, c.MealTimes.Lunch, c.MealTimes.Dinner} {
		if _, _, err := ParseClock(hm); err != nil {
			return err
		}
	}
	if c.PurgeAfterDays < 0 {
		return fmt.Errorf("purge_after_days must not be negative")
	}
	return nil
}

// Location resolves Timezone, defaulting to UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// PurgeEnabled reports whether a purge schedule is configured.
func (c *Config) PurgeEnabled() bool {
	s := strings.TrimSpace(c.PurgeSchedule)
	return s != "" && !strings.EqualFold(s, PurgeDisabled)
}

// ExportsDir returns the default import/export directory.
func (c *Config) ExportsDir() string {
	return filepath.Join(c.BaseDir, "exports")
}

// For returns the configured HH:MM start time for a meal type name.
func (m MealTimes) For(mealType string) string {
	switch mealType {
	case "breakfast":
		return m.Breakfast
	case "lunch":
		return m.Lunch
	case "dinner":
		return m.Dinner
	}
	return ""
}

// ParseClock parses an HH:MM 24-hour time.
func ParseClock(hm string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, 0, fmt.Errorf("meal time must be HH:MM, got %q", hm)
	}
	return t.Hour(), t.Minute(), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		BaseDir:        pickString(base.BaseDir, overlay.BaseDir),
		WeekStart:      pickString(base.WeekStart, overlay.WeekStart),
		Timezone:       pickString(base.Timezone, overlay.Timezone),
		PurgeSchedule:  pickString(base.PurgeSchedule, overlay.PurgeSchedule),
		LogLevel:       pickString(base.LogLevel, overlay.LogLevel),
		PurgeAfterDays: pickInt(base.PurgeAfterDays, overlay.PurgeAfterDays),
		DBMaxOpenConns: pickInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns),
		DBMaxIdleConns: pickInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns),
		MealTimes: MealTimes{
			Breakfast: pickString(base.MealTimes.Breakfast, overlay.MealTimes.Breakfast),
			Lunch:     pickString(base.MealTimes.Lunch, overlay.MealTimes.Lunch),
			Dinner:    pickString(base.MealTimes.Dinner, overlay.MealTimes.Dinner),
		},
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// pickString returns overlay if set, else base.
func pickString(base, overlay string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

// pickInt returns overlay if non-zero, else base.
func pickInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
