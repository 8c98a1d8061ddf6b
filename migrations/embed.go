// Package migrations embeds the schema migrations for the SQL backends.
package migrations

import "embed"

// FS holds one directory of NNN_name.sql files per backend.
//
//go:embed sqlite/*.sql
var FS embed.FS
