// Package postgres embebe las migraciones SQL de PostgreSQL.
package postgres

import "embed"

// FS contiene las migraciones ({version}_{name}.sql).
//
//go:embed *.sql
var FS embed.FS

// Dir es el directorio dentro de FS donde viven las migraciones.
const Dir = "."
