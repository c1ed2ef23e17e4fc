// Package migrations embeds the message archive schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
