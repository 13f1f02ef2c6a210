package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultTimestampLayout matches the yyyy-MM-dd HH:mm:ss format of the record files.
const DefaultTimestampLayout = "2006-01-02 15:04:05"

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Log        LogConfig
	CORS       CORSConfig
	Records    RecordsConfig
	Enrollment EnrollmentConfig
	Exports    ExportsConfig
	Metrics    MetricsConfig
	Docs       DocsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RecordsConfig describes the flat-file layout used by import and export.
type RecordsConfig struct {
	DataDir         string
	TimestampLayout string
	Delimiter       rune
	HeaderLines     int
	CommentPrefix   string
	MaxLineBytes    int
	BootstrapImport bool
}

// EnrollmentConfig carries the evaluation engine limits.
type EnrollmentConfig struct {
	MaxCreditsPerSemester int
}

// ExportsConfig controls where exports land and how download links are signed.
type ExportsConfig struct {
	Dir             string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	Retention       time.Duration
	CleanupInterval time.Duration
	Workers         int
	WorkerRetries   int
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// DocsConfig toggles the swagger UI.
type DocsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	dataDir := v.GetString("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	headerLines := v.GetInt("CSV_HEADER_LINES")
	if headerLines < 0 {
		headerLines = 0
	}
	cfg.Records = RecordsConfig{
		DataDir:         dataDir,
		TimestampLayout: fallback(v.GetString("TIMESTAMP_LAYOUT"), DefaultTimestampLayout),
		Delimiter:       parseDelimiter(v.GetString("CSV_DELIMITER"), ','),
		HeaderLines:     headerLines,
		CommentPrefix:   v.GetString("CSV_COMMENT_PREFIX"),
		MaxLineBytes:    v.GetInt("CSV_MAX_LINE_BYTES"),
		BootstrapImport: v.GetBool("BOOTSTRAP_IMPORT"),
	}

	maxCredits := v.GetInt("MAX_CREDITS_PER_SEMESTER")
	if maxCredits <= 0 {
		maxCredits = 18
	}
	cfg.Enrollment = EnrollmentConfig{MaxCreditsPerSemester: maxCredits}

	exportDir := fallback(v.GetString("EXPORT_DIR"), "exports")
	if !filepath.IsAbs(exportDir) {
		exportDir = filepath.Join(dataDir, exportDir)
	}
	cfg.Exports = ExportsConfig{
		Dir:             exportDir,
		SignedURLSecret: v.GetString("EXPORT_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORT_SIGNED_URL_TTL"), 30*time.Minute),
		Retention:       parseDuration(v.GetString("EXPORT_RETENTION"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORT_CLEANUP_INTERVAL"), time.Hour),
		Workers:         v.GetInt("EXPORT_WORKERS"),
		WorkerRetries:   v.GetInt("EXPORT_WORKER_RETRIES"),
	}
	if cfg.Exports.Workers <= 0 {
		cfg.Exports.Workers = 1
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	docs := cfg.Env != EnvProduction
	if v.IsSet("ENABLE_DOCS") {
		docs = v.GetBool("ENABLE_DOCS")
	}
	cfg.Docs = DocsConfig{Enabled: docs}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("TIMESTAMP_LAYOUT", DefaultTimestampLayout)
	v.SetDefault("CSV_DELIMITER", ",")
	v.SetDefault("CSV_HEADER_LINES", 1)
	v.SetDefault("CSV_COMMENT_PREFIX", "#")
	v.SetDefault("CSV_MAX_LINE_BYTES", 1<<20)
	v.SetDefault("BOOTSTRAP_IMPORT", false)

	v.SetDefault("MAX_CREDITS_PER_SEMESTER", 18)

	v.SetDefault("EXPORT_DIR", "exports")
	v.SetDefault("EXPORT_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORT_SIGNED_URL_TTL", "30m")
	v.SetDefault("EXPORT_RETENTION", "24h")
	v.SetDefault("EXPORT_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORT_WORKERS", 1)
	v.SetDefault("EXPORT_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_METRICS", true)
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseDelimiter accepts a single character or the names "tab" and "pipe".
func parseDelimiter(raw string, fallback rune) rune {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		if raw == "" {
			return fallback
		}
	case "tab", `\t`:
		return '\t'
	case "pipe":
		return '|'
	}
	r, size := utf8.DecodeRuneInString(raw)
	if r == utf8.RuneError || size != len(raw) || r == '"' || r == '\\' || r == '\n' || r == '\r' {
		return fallback
	}
	return r
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
