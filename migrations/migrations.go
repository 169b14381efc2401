// Package migrations embeds the PostgreSQL schema.
package migrations

import "embed"

// FS holds the ordered *.sql schema files.
//
//go:embed *.sql
var FS embed.FS
