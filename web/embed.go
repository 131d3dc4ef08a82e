package web

import "embed"

// Templates embeds report templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static embeds the single page application served at /.
//
//go:embed static
var Static embed.FS
