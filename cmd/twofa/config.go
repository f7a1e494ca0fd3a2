package main

import "time"

const (
	storeMemory   = "memory"
	storeRedis    = "redis"
	storePostgres = "postgres"
	storeMongo    = "mongo"
)

type appConfig struct {
	Env          string `env:"APP_ENV" envDefault:"development"`
	Service      string `env:"APP_SERVICE" envDefault:"twofa"`
	LogLevel     string `env:"LOG_LEVEL"`
	Store        string `env:"TWOFA_STORE" envDefault:"memory"`
	AttemptStore string `env:"TWOFA_ATTEMPT_STORE" envDefault:"memory"`
	// Recovery mail recipients as account:address pairs, e.g.
	// "jane:jane@example.com,john:john@example.com".
	RecoveryAddresses map[string]string `env:"TWOFA_RECOVERY_ADDRESSES"`
	RecoverySubject   string            `env:"TWOFA_RECOVERY_SUBJECT"`
	AttemptCapacity   int               `env:"TWOFA_ATTEMPT_CAPACITY" envDefault:"10000"`
	SweepInterval     time.Duration     `env:"TWOFA_SWEEP_INTERVAL" envDefault:"1m"`
	MountPath         string            `env:"TWOFA_MOUNT_PATH" envDefault:"/2fa"`

	TrustedIPHeaders []string `env:"TWOFA_TRUSTED_IP_HEADERS" envSeparator:","`
	RateLimitStore   string   `env:"TWOFA_RATELIMIT_STORE" envDefault:"memory"`
	// Per account and operation: AccountBurst requests, then one more
	// every AccountRefill.
	AccountBurst  int           `env:"TWOFA_ACCOUNT_BURST" envDefault:"10"`
	AccountRefill time.Duration `env:"TWOFA_ACCOUNT_REFILL" envDefault:"1m"`
	// Per client IP across all routes.
	IPBurst  int           `env:"TWOFA_IP_BURST" envDefault:"60"`
	IPRefill time.Duration `env:"TWOFA_IP_REFILL" envDefault:"1s"`
}
