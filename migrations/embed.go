// Package migrations embeds the SQL migration files so binaries can migrate
// without a migrations directory on disk.
package migrations

import "embed"

// FS holds every *.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
