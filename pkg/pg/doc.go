// Package pg opens PostgreSQL connection pools with pgx, applies embedded
// goose migrations and exposes a readiness check.
//
//	pool, err := pg.Connect(ctx, cfg.Postgres)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg.Postgres, db.Migrations, db.PostgresDir, log); err != nil {
//		return err
//	}
//	store := history.NewSQLStore(pg.OpenDB(pool), db.Postgres)
package pg
