// internal/app/features/stats/views/views.go
package stats

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "stats",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
