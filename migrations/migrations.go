// Package migrations embeds the SQL schema scripts for local stores.
package migrations

import "embed"

//go:embed sqlite/*.sql
var FS embed.FS
