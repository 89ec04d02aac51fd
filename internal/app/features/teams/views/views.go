// internal/app/features/teams/views/views.go
package teams

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "teams",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
