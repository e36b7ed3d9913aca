// Package pg bootstraps the PostgreSQL layer on top of pgx/v5: a retrying
// pool constructor, goose migrations from an embedded filesystem, a health
// check closure and helpers that classify driver errors.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, migrations.FS, ".", log); err != nil {
//	    return err
//	}
//
// # Error Handling
//
// IsDuplicateKeyError and IsNotFoundError let repositories translate driver
// errors into domain errors. IsTransientError flags failures that are safe to
// retry (timeouts, dropped connections, serialization failures) so callers
// can surface them as transient instead of terminal.
package pg
