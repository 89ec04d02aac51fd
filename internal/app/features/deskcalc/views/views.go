// internal/app/features/deskcalc/views/views.go
package deskcalc

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "deskcalc",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
