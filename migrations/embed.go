// Package migrations embeds the application store's SQL migrations so
// the binary carries its own schema.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
