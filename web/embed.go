package web

import "embed"

// TemplatesFS embeds HTML templates for the chart pages.
//
//go:embed templates/*.html
var TemplatesFS embed.FS
