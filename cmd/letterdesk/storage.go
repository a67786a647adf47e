package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/letterdesk/internal/db"
	"github.com/dmitrymomot/letterdesk/pkg/file"
	"github.com/dmitrymomot/letterdesk/pkg/httpserver"
	"github.com/dmitrymomot/letterdesk/pkg/mongo"
	"github.com/dmitrymomot/letterdesk/pkg/pg"
	"github.com/dmitrymomot/letterdesk/pkg/redis"
	"github.com/dmitrymomot/letterdesk/pkg/sqlite"
	"github.com/dmitrymomot/letterdesk/svc/history"
	"github.com/dmitrymomot/letterdesk/svc/intern"
	"github.com/dmitrymomot/letterdesk/svc/workflow"
)

// stores holds the selected record backends and what is needed to close and
// probe them.
type stores struct {
	interns intern.Store
	history history.Store
	checks  httpserver.Checks
	closers []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg Config, log *slog.Logger) (*stores, error) {
	s := &stores{checks: httpserver.Checks{}}

	switch cfg.Storage {
	case backendMemory, "":
		s.interns = intern.NewMemoryStore()
		s.history = history.NewMemoryStore()
		log.WarnContext(ctx, "using in-memory storage; data is lost on restart")

	case backendPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		if err := pg.Migrate(ctx, pool, cfg.Postgres, db.Migrations, db.Postgres.MigrationsDir(), log); err != nil {
			s.close()
			return nil, err
		}
		conn := pg.OpenDB(pool)
		s.closers = append(s.closers, func() { _ = conn.Close() })
		s.interns = intern.NewSQLStore(conn, db.Postgres)
		s.history = history.NewSQLStore(conn, db.Postgres)
		s.checks["postgres"] = pg.Healthcheck(pool)

	case backendSQLite:
		conn, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = conn.Close() })
		if err := sqlite.Migrate(ctx, conn, db.Migrations, db.SQLite.MigrationsDir(), log); err != nil {
			s.close()
			return nil, err
		}
		s.interns = intern.NewSQLStore(conn, db.SQLite)
		s.history = history.NewSQLStore(conn, db.SQLite)
		s.checks["sqlite"] = sqlite.Healthcheck(conn)

	case backendMongo:
		database, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		client := database.Client()
		s.closers = append(s.closers, func() { _ = client.Disconnect(context.Background()) })
		interns := intern.NewMongoStore(database)
		hist := history.NewMongoStore(database)
		for _, ensure := range []func(context.Context) error{interns.EnsureIndexes, hist.EnsureIndexes} {
			if err := ensure(ctx); err != nil {
				s.close()
				return nil, err
			}
		}
		s.interns, s.history = interns, hist
		s.checks["mongo"] = mongo.Healthcheck(client)

	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage)
	}
	return s, nil
}

// openGuard returns the send guard. A redis guard adds its client to s.
func openGuard(ctx context.Context, cfg Config, s *stores) (workflow.Guard, error) {
	switch cfg.Guard {
	case backendMemory, "":
		return workflow.NewMemoryGuard(nil), nil
	case backendRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.checks["redis"] = redis.Healthcheck(client)
		return workflow.NewRedisGuard(client, cfg.ServiceName+":guard:"), nil
	}
	return nil, fmt.Errorf("unknown SEND_GUARD %q", cfg.Guard)
}

// openArchive returns nil when archiving is off.
func openArchive(ctx context.Context, cfg Config) (file.Storage, error) {
	switch cfg.Archive {
	case backendNone, "":
		return nil, nil
	case backendLocal:
		st, err := file.NewLocalStorage(cfg.ArchiveDir, cfg.ArchiveBaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case backendS3:
		st, err := file.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown ARCHIVE_BACKEND %q", cfg.Archive)
}
