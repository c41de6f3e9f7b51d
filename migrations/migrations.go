// Package migrations embeds postgres schema migrations
package migrations

import "embed"

// FS contains ordered up/down migrations in golang-migrate naming format
//
//go:embed *.sql
var FS embed.FS
