package resources

import "embed"

//go:embed i18n seed
var FS embed.FS
