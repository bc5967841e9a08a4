// Package migrations embeds the SQL migration files so the binary can apply
// them without a mounted migrations directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
