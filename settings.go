package errtrack

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultMaxDeliveryAttempts is the number of failed attempts after which a message is given up on.
	DefaultMaxDeliveryAttempts = 5
	// DefaultErrorTrackingMaxAgeMinutes is how long an idle tracking record is kept.
	DefaultErrorTrackingMaxAgeMinutes = 10
)

// Settings carries the retry strategy values the tracker needs.
type Settings struct {
	// MaxDeliveryAttempts is the error count at which HasFailedTooManyTimes turns true.
	MaxDeliveryAttempts int `env:"ERRTRACK_MAX_DELIVERY_ATTEMPTS" envDefault:"5"`
	// ErrorTrackingMaxAgeMinutes is the record TTL, refreshed on every write.
	ErrorTrackingMaxAgeMinutes int `env:"ERRTRACK_MAX_AGE_MINUTES" envDefault:"10"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxDeliveryAttempts:        DefaultMaxDeliveryAttempts,
		ErrorTrackingMaxAgeMinutes: DefaultErrorTrackingMaxAgeMinutes,
	}
}

// LoadSettingsFromEnv reads Settings from ERRTRACK_* environment variables,
// falling back to the defaults for unset ones.
func LoadSettingsFromEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// TTL returns the record time-to-live.
func (s Settings) TTL() time.Duration {
	return time.Duration(s.ErrorTrackingMaxAgeMinutes) * time.Minute
}

// Validate checks that both values are positive.
func (s Settings) Validate() error {
	if s.MaxDeliveryAttempts < 1 {
		return fmt.Errorf("%w: max delivery attempts must be at least 1, got %d", ErrInvalidSettings, s.MaxDeliveryAttempts)
	}
	if s.ErrorTrackingMaxAgeMinutes < 1 {
		return fmt.Errorf("%w: error tracking max age must be at least 1 minute, got %d", ErrInvalidSettings, s.ErrorTrackingMaxAgeMinutes)
	}
	return nil
}
