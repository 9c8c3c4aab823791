// ABOUTME: Embeds HTML templates and markdown docs into the binary using go:embed
// ABOUTME: Provides templateFS and docsFS for loading them at runtime

package web

import "embed"

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

//go:embed docs/*.md
var docsFS embed.FS
