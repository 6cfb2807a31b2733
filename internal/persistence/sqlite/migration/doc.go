// Package migration applies versioned SQL schema files to a SQLite database.
//
// Migration files are read from an fs.FS (normally an embedded directory) and
// must be named {version}_{description}.sql, for example
// "001_initial_schema.sql". Applied versions are tracked in the
// schema_migrations table so each file runs exactly once.
//
// Example usage:
//
//	db, err := migration.Open(migration.DefaultSQLiteConfig("attendance.db"))
//	if err != nil {
//		return err
//	}
//	manager := migration.NewManager(migration.NewScanner(schemaFS, "schema"), migration.NewSQLiteExecutor(db), logger)
//	if _, err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
