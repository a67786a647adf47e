package main

import (
	"time"

	"github.com/dmitrymomot/letterdesk/pkg/file"
	"github.com/dmitrymomot/letterdesk/pkg/httpserver"
	"github.com/dmitrymomot/letterdesk/pkg/jwt"
	"github.com/dmitrymomot/letterdesk/pkg/logger"
	"github.com/dmitrymomot/letterdesk/pkg/mongo"
	"github.com/dmitrymomot/letterdesk/pkg/pg"
	"github.com/dmitrymomot/letterdesk/pkg/redis"
	"github.com/dmitrymomot/letterdesk/pkg/sqlite"
	"github.com/dmitrymomot/letterdesk/svc/dispatch"
	"github.com/dmitrymomot/letterdesk/svc/letter"
)

// Backend names.
const (
	backendMemory   = "memory"
	backendPostgres = "postgres"
	backendSQLite   = "sqlite"
	backendMongo    = "mongo"
	backendRedis    = "redis"
	backendNone     = "none"
	backendLocal    = "local"
	backendS3       = "s3"
)

// Config is everything the server reads from the environment.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_NAME" envDefault:"letterdesk"`

	// Storage is memory, postgres, sqlite or mongo.
	Storage string `env:"STORAGE_BACKEND" envDefault:"memory"`
	// Guard is memory or redis.
	Guard    string        `env:"SEND_GUARD" envDefault:"memory"`
	GuardTTL time.Duration `env:"SEND_GUARD_TTL" envDefault:"30s"`
	// Archive is none, local or s3.
	Archive        string `env:"ARCHIVE_BACKEND" envDefault:"none"`
	ArchiveDir     string `env:"ARCHIVE_LOCAL_DIR" envDefault:"./tmp/archive"`
	ArchiveBaseURL string `env:"ARCHIVE_LOCAL_BASE_URL"`

	ExportMaxPages int `env:"EXPORT_MAX_PAGES" envDefault:"0"`
	// DevOwner is used as the owner of every request when no JWT secret is
	// configured. Never set it in production.
	DevOwner string `env:"AUTH_DEV_OWNER"`

	HTTP     httpserver.Config
	Postgres pg.Config
	SQLite   sqlite.Config
	Mongo    mongo.Config
	Redis    redis.Config
	Email    dispatch.ChannelConfig
	Dispatch dispatch.Config
	S3       file.S3Config
	JWT      jwt.Config
	Sentry   logger.SentryConfig
	Company  letter.Company
}
