package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"aram-stats/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DataPath        string
	DataDir         string
	SourceURLs      []string
	CORSOrigins     []string
	DatabaseURL     string
	PGQuery         string
	DBPath          string
	ServerPort      string
	LogLevel        string
	CoreSlots       []string
	Boots           []string
	CacheMaxEntries int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DataPath:    getEnv("DATA_PATH", "./aram_participants_clean_preprocessed.csv"),
		DataDir:     getEnv("DATA_DIR", ""),
		SourceURLs:  splitList(getEnv("SOURCE_URL_PREFIXES", ""), ","),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		PGQuery:     getEnv("PG_QUERY", "SELECT * FROM aram_participants"),
		DBPath:      getEnv("DB_PATH", "aram.db"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CoreSlots:   splitList(getEnv("CORE_SLOTS", "item0,item1,item2"), ","),
		Boots:       constants.DefaultBoots,
	}

	if boots := getEnv("BOOTS", ""); boots != "" {
		cfg.Boots = splitList(boots, "\n")
		if len(cfg.Boots) == 1 {
			cfg.Boots = splitList(boots, ",")
		}
	}

	// Prefixes are matched literally, so each must end at a path boundary.
	for i, prefix := range cfg.SourceURLs {
		u, err := url.Parse(prefix)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("SOURCE_URL_PREFIXES entry %q is not an http(s) URL", prefix)
		}
		if !strings.HasSuffix(prefix, "/") {
			cfg.SourceURLs[i] = prefix + "/"
		}
	}

	maxEntries, err := strconv.Atoi(getEnv("CACHE_MAX_ENTRIES", strconv.Itoa(constants.DefaultCacheSize)))
	if err != nil || maxEntries < 1 {
		return nil, fmt.Errorf("CACHE_MAX_ENTRIES must be a positive integer")
	}
	cfg.CacheMaxEntries = maxEntries

	if len(cfg.CoreSlots) == 0 {
		return nil, fmt.Errorf("CORE_SLOTS must name at least one item column")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	logger.Info().
		Str("data_path", cfg.DataPath).
		Str("data_dir", cfg.DataDir).
		Int("source_url_prefixes", len(cfg.SourceURLs)).
		Bool("postgres_source", cfg.DatabaseURL != "").
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Strs("core_slots", cfg.CoreSlots).
		Int("boots", len(cfg.Boots)).
		Int("cache_max_entries", cfg.CacheMaxEntries).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var Module = fx.Provide(Load)
