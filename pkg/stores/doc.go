// Package stores persists plan history: every computed plan, its actions
// and the outcome of applying it, in a local SQLite database.
//
// The engine itself is stateless; the history store exists for operators,
// not for planning. Plans are stored twice over: a summary row plus
// per-action rows for querying, and the full kind-tagged JSON payload for
// lossless retrieval. Schema changes ship as embedded golang-migrate
// migration files and run via Migrate.
//
//	store, err := stores.NewSQLiteStore(stores.Config{Path: "history.db"})
//	if err != nil {
//	    return err
//	}
//	if err := store.Init(ctx); err != nil {
//	    return err
//	}
//	defer store.Close()
//	if err := store.Migrate(ctx); err != nil {
//	    return err
//	}
//	if err := store.SavePlan(ctx, plan); err != nil {
//	    return err
//	}
package stores
