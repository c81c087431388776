// Package migrations встраивает SQL миграции базы аудита генерации.
package migrations

import "embed"

//go:embed sql/*.sql
var FS embed.FS

// Path - каталог миграций внутри встроенной файловой системы.
const Path = "sql"
