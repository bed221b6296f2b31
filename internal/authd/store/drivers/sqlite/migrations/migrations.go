// Package migrations embeds the SQL migration files so the binary can apply
// its own schema on startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
