package web

import "embed"

// TemplatesFS embeds the page templates and their shared partials.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js/images).
//go:embed static/*
var StaticFS embed.FS
