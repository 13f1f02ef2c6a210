package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := fromViper(newTestViper(nil))

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 18, cfg.Enrollment.MaxCreditsPerSemester)
	assert.Equal(t, DefaultTimestampLayout, cfg.Records.TimestampLayout)
	assert.Equal(t, ',', cfg.Records.Delimiter)
	assert.Equal(t, 1, cfg.Records.HeaderLines)
	assert.Equal(t, "#", cfg.Records.CommentPrefix)
	assert.Equal(t, 1<<20, cfg.Records.MaxLineBytes)
	assert.Equal(t, filepath.Join("./data", "exports"), cfg.Exports.Dir)
	assert.Equal(t, 30*time.Minute, cfg.Exports.SignedURLTTL)
	assert.Equal(t, 24*time.Hour, cfg.Exports.Retention)
	assert.Equal(t, time.Hour, cfg.Exports.CleanupInterval)
	assert.Equal(t, 1, cfg.Exports.Workers)
	assert.Equal(t, 3, cfg.Exports.WorkerRetries)
	assert.True(t, cfg.Docs.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestFromViperOverrides(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{
		"ENV":                      EnvProduction,
		"MAX_CREDITS_PER_SEMESTER": 21,
		"CSV_DELIMITER":            "pipe",
		"CSV_HEADER_LINES":         -3,
		"DATA_DIR":                 "/srv/records",
		"EXPORT_DIR":               "/tmp/out",
		"EXPORT_SIGNED_URL_TTL":    "not-a-duration",
		"ALLOWED_ORIGINS":          "https://a.example, ,https://b.example",
		"EXPORT_WORKERS":           -2,
	}))

	assert.Equal(t, 1, cfg.Exports.Workers)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)

	assert.Equal(t, 21, cfg.Enrollment.MaxCreditsPerSemester)
	assert.Equal(t, '|', cfg.Records.Delimiter)
	assert.Equal(t, 0, cfg.Records.HeaderLines)
	assert.Equal(t, "/srv/records", cfg.Records.DataDir)
	assert.Equal(t, "/tmp/out", cfg.Exports.Dir)
	assert.Equal(t, 30*time.Minute, cfg.Exports.SignedURLTTL)
	assert.False(t, cfg.Docs.Enabled)
}

func TestFromViperInvalidCreditLimitFallsBack(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{"MAX_CREDITS_PER_SEMESTER": 0}))
	assert.Equal(t, 18, cfg.Enrollment.MaxCreditsPerSemester)
}

func TestParseDelimiter(t *testing.T) {
	assert.Equal(t, ';', parseDelimiter(";", ','))
	assert.Equal(t, '\t', parseDelimiter("tab", ','))
	assert.Equal(t, ',', parseDelimiter("", ','))
	assert.Equal(t, ',', parseDelimiter(`"`, ','))
	assert.Equal(t, ',', parseDelimiter(";;", ','))
}
