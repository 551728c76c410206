// Package migrations embebe los archivos SQL de migración.
package migrations

import "embed"

// FS contiene las migraciones de PostgreSQL, ordenadas por prefijo numérico.
//
//go:embed *.sql
var FS embed.FS
