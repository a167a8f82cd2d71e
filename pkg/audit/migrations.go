package audit

import "embed"

// Migrations holds the goose migrations for PostgresStorage, under "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the SQL files.
const MigrationsDir = "migrations"
