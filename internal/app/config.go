package app

import (
	"time"

	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/envutil"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/types"
)

// ProgressionConfig is the immutable unlock-policy configuration, validated
// once at startup and injected into the status service, the completion
// workflow and the batch job. There is no ambient lookup at call sites.
type ProgressionConfig struct {
	UnlockPolicy          string
	WeekDuration          time.Duration
	MaxConcurrentAdvances int
	BatchCheckInterval    time.Duration
}

const (
	minWeekDurationDays = 1
	maxWeekDurationDays = 365
	minConcurrent       = 1
	maxConcurrent       = 100
	minBatchIntervalMS  = 1000
	maxBatchIntervalMS  = 300000
)

func (c ProgressionConfig) Validate() error {
	switch c.UnlockPolicy {
	case types.UnlockPolicyStrict, types.UnlockPolicyAccelerated:
	default:
		return apierr.Newf(apierr.CodeInvalidConfiguration,
			"unknown unlock policy %q", c.UnlockPolicy)
	}
	days := int(c.WeekDuration / (24 * time.Hour))
	if days < minWeekDurationDays || days > maxWeekDurationDays {
		return apierr.Newf(apierr.CodeInvalidConfiguration,
			"week duration %d days out of range [%d, %d]", days, minWeekDurationDays, maxWeekDurationDays)
	}
	if c.MaxConcurrentAdvances < minConcurrent || c.MaxConcurrentAdvances > maxConcurrent {
		return apierr.Newf(apierr.CodeInvalidConfiguration,
			"max concurrent advances %d out of range [%d, %d]", c.MaxConcurrentAdvances, minConcurrent, maxConcurrent)
	}
	ms := int(c.BatchCheckInterval / time.Millisecond)
	if ms < minBatchIntervalMS || ms > maxBatchIntervalMS {
		return apierr.Newf(apierr.CodeInvalidConfiguration,
			"batch check interval %dms out of range [%d, %d]", ms, minBatchIntervalMS, maxBatchIntervalMS)
	}
	return nil
}

type Config struct {
	Port                 string
	JWTSecretKey         string
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	AdvanceWorkerEnabled bool
	TokenCleanupInterval time.Duration
	Progression          ProgressionConfig
}

// LoadConfig reads the process configuration from the environment. An invalid
// progression section is fatal: the caller must not start the process.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:                 envutil.Str("PORT", "8080"),
		JWTSecretKey:         envutil.Str("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:       time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RefreshTokenTTL:      time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 86400)) * time.Second,
		RedisAddr:            envutil.Str("REDIS_ADDR", ""),
		RedisPassword:        envutil.Str("REDIS_PASSWORD", ""),
		RedisDB:              envutil.Int("REDIS_DB", 0),
		AdvanceWorkerEnabled: envutil.Bool("ADVANCE_WORKER_ENABLED", true),
		TokenCleanupInterval: time.Duration(envutil.Int("TOKEN_CLEANUP_INTERVAL_MIN", 60)) * time.Minute,
		Progression: ProgressionConfig{
			UnlockPolicy:          envutil.Str("UNLOCK_POLICY", types.UnlockPolicyStrict),
			WeekDuration:          time.Duration(envutil.Int("WEEK_DURATION_DAYS", 7)) * 24 * time.Hour,
			MaxConcurrentAdvances: envutil.Int("MAX_CONCURRENT_ADVANCES", 10),
			BatchCheckInterval:    time.Duration(envutil.Int("BATCH_CHECK_INTERVAL_MS", 60000)) * time.Millisecond,
		},
	}
	if err := cfg.Progression.Validate(); err != nil {
		log.Error("Invalid progression configuration", "error", err)
		return Config{}, err
	}
	return cfg, nil
}
