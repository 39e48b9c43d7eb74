// AngelaMos | 2026
// embed.go

// Package migrations holds the goose SQL migrations applied at startup and by
// jobtrackctl.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
