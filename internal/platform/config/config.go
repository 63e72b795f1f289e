package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Reminder scheduling
	ReminderDeadlineLeadDays int           // Deadline reminders fire this many days before target_date
	ContributionReminderDay  int           // Day of month for contribution nudges
	ProgressReminderDay      int           // Day of month for progress updates
	ReminderSweepInterval    time.Duration // Background sweep cadence

	// Rate limiting, e.g. "100-M" for 100 requests per minute
	RateLimit string

	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "goals-backend")
	viper.SetDefault("REMINDER_DEADLINE_LEAD_DAYS", 7)
	viper.SetDefault("CONTRIBUTION_REMINDER_DAY", 1)
	viper.SetDefault("PROGRESS_REMINDER_DAY", 15)
	viper.SetDefault("REMINDER_SWEEP_INTERVAL", "1h")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.ReminderDeadlineLeadDays = viper.GetInt("REMINDER_DEADLINE_LEAD_DAYS")
	if cfg.ReminderDeadlineLeadDays < 0 {
		log.Printf("Warning: REMINDER_DEADLINE_LEAD_DAYS is negative (%d). Defaulting to 7.\n", cfg.ReminderDeadlineLeadDays)
		cfg.ReminderDeadlineLeadDays = 7
	}

	cfg.ContributionReminderDay = clampDayOfMonth("CONTRIBUTION_REMINDER_DAY", viper.GetInt("CONTRIBUTION_REMINDER_DAY"), 1)
	cfg.ProgressReminderDay = clampDayOfMonth("PROGRESS_REMINDER_DAY", viper.GetInt("PROGRESS_REMINDER_DAY"), 15)

	sweepIntervalStr := viper.GetString("REMINDER_SWEEP_INTERVAL")
	sweepInterval, err := time.ParseDuration(sweepIntervalStr)
	if err != nil || sweepInterval <= 0 {
		sweepInterval = time.Hour
		log.Printf("Warning: Invalid value for REMINDER_SWEEP_INTERVAL ('%s'). Defaulting to %s.\n", sweepIntervalStr, sweepInterval.String())
	}
	cfg.ReminderSweepInterval = sweepInterval

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}

// clampDayOfMonth keeps cadence days within 1..28 so every month has the day.
func clampDayOfMonth(name string, day int, fallback int) int {
	if day < 1 || day > 28 {
		log.Printf("Warning: %s must be between 1 and 28, got %d. Defaulting to %d.\n", name, day, fallback)
		return fallback
	}
	return day
}
