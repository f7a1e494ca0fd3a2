// Package mongo is the MongoDB backend of the two-factor service, built on
// the official v2 driver.
//
// New connects with retries and NewWithDatabase selects Config.Database.
// OptionBackend implements secondfactor.Backend with one document per
// account:
//
//	{ "_id": "jane", "options": { "totp_secret": "...", "totp_setup_complete": "1" } }
//
// A commit is a single UpdateOne with upsert, mapping stored values to
// $set and deletions to $unset, so partial writes are never visible.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := secondfactor.NewStagedStore(mongo.NewOptionBackend(db, cfg.Collection))
//
// Healthcheck returns a readiness check for pkg/httpserver.
package mongo
