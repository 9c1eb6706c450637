// Package web embeds the HTML templates and static assets into the binary,
// so a deployment is a single file with no directory layout to get wrong.
package web

import "embed"

//go:embed templates static
var Files embed.FS
