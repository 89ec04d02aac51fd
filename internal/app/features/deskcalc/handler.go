// internal/app/features/deskcalc/handler.go
package deskcalc

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/standhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the desk height calculator: enter your height, get the
// recommended desk surface heights for sitting and standing.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type pageData struct {
	viewdata.BaseVM
	Error          string
	PersonHeight   int
	Position       string // "sitting" or "standing"
	SittingPretty  string
	StandingPretty string
	CurrentPretty  string
	MinHeight      int
	MaxHeight      int
}

func (h *Handler) ServeCalculator(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM:    viewdata.NewBaseVM(r, "Desk Height Calculator", "/"),
		MinHeight: MinPersonHeight,
		MaxHeight: MaxPersonHeight,
	}

	personCM := MinPersonHeight
	if raw := query.Get(r, "height"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			data.Error = "Please enter your height in whole centimeters."
		case n < MinPersonHeight || n > MaxPersonHeight:
			data.Error = fmt.Sprintf("Height must be between %d and %d cm.", MinPersonHeight, MaxPersonHeight)
		default:
			personCM = n
		}
	}

	position := query.Get(r, "position")
	if position != "standing" {
		position = "sitting"
	}

	sitting, standing, _ := Recommend(personCM)

	data.PersonHeight = personCM
	data.Position = position
	data.SittingPretty = fmt.Sprintf("%.1f", sitting)
	data.StandingPretty = fmt.Sprintf("%.1f", standing)
	if position == "standing" {
		data.CurrentPretty = data.StandingPretty
	} else {
		data.CurrentPretty = data.SittingPretty
	}

	templates.Render(w, r, "deskcalc", data)
}
