package errtrack

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSettings_Defaults(t *testing.T) {
	s := DefaultSettings()
	require.Equal(t, 5, s.MaxDeliveryAttempts)
	require.Equal(t, 10*time.Minute, s.TTL())
	require.NoError(t, s.Validate())
}

func TestSettings_Validate(t *testing.T) {
	require.ErrorIs(t, Settings{MaxDeliveryAttempts: 0, ErrorTrackingMaxAgeMinutes: 1}.Validate(), ErrInvalidSettings)
	require.ErrorIs(t, Settings{MaxDeliveryAttempts: 1, ErrorTrackingMaxAgeMinutes: 0}.Validate(), ErrInvalidSettings)
	require.NoError(t, Settings{MaxDeliveryAttempts: 1, ErrorTrackingMaxAgeMinutes: 1}.Validate())
}

func TestLoadSettingsFromEnv(t *testing.T) {
	t.Setenv("ERRTRACK_MAX_DELIVERY_ATTEMPTS", "3")
	t.Setenv("ERRTRACK_MAX_AGE_MINUTES", "60")

	s, err := LoadSettingsFromEnv()
	require.NoError(t, err)
	require.Equal(t, 3, s.MaxDeliveryAttempts)
	require.Equal(t, time.Hour, s.TTL())
}

func TestLoadSettingsFromEnv_Defaults(t *testing.T) {
	// register restores, then unset
	t.Setenv("ERRTRACK_MAX_DELIVERY_ATTEMPTS", "")
	t.Setenv("ERRTRACK_MAX_AGE_MINUTES", "")
	require.NoError(t, os.Unsetenv("ERRTRACK_MAX_DELIVERY_ATTEMPTS"))
	require.NoError(t, os.Unsetenv("ERRTRACK_MAX_AGE_MINUTES"))

	s, err := LoadSettingsFromEnv()
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)
}

func TestLoadSettingsFromEnv_Invalid(t *testing.T) {
	t.Setenv("ERRTRACK_MAX_DELIVERY_ATTEMPTS", "many")
	_, err := LoadSettingsFromEnv()
	require.Error(t, err)

	t.Setenv("ERRTRACK_MAX_DELIVERY_ATTEMPTS", "0")
	_, err = LoadSettingsFromEnv()
	require.ErrorIs(t, err, ErrInvalidSettings)
}
