package migrations

import "embed"

// FS contains embedded SQLite migrations for the IGDB cache store.
//
//go:embed *.sql
var FS embed.FS
