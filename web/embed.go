package web

import "embed"

// Content holds the embedded frontend (live map page).
//
//go:embed index.html
var Content embed.FS
