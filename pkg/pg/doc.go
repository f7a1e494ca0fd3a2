// Package pg is the PostgreSQL backend of the two-factor service, built on
// pgx/v5 and goose/v3.
//
// Connect opens a pool with retries, Migrate applies the embedded schema
// (a single twofa_options table keyed by account and option name), and
// OptionBackend implements secondfactor.Backend on top of it with every
// commit running in one transaction:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//	store := secondfactor.NewStagedStore(pg.NewOptionBackend(pool))
//
// Healthcheck returns a readiness check for pkg/httpserver.
package pg
