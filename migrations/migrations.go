// Package migrations embeds the SQL schema of the food API.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files. Pass "." as the directory to
// database.RunMigrations.
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory inside FS that holds the migrations.
const Dir = "."
