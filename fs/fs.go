// Package appfs embeds assets shipped with the portal binaries.
package appfs

import "embed"

//go:embed migrations/*.sql
var FS embed.FS
