// Package migrations embeds the message log schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
