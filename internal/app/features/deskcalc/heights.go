// internal/app/features/deskcalc/heights.go
package deskcalc

// Supported person heights in whole centimeters.
const (
	MinPersonHeight = 150
	MaxPersonHeight = 205
)

// Desk surface heights recommended for a 150 cm person, in centimeters.
// Taller people get linearly more: elbow height grows about 0.40 cm
// seated and 0.62 cm standing per centimeter of body height.
const (
	baseSitting  = 56.5
	baseStanding = 93.5

	sittingPerCM  = 0.40
	standingPerCM = 0.62
)

// Recommend returns the sitting and standing desk surface heights in
// centimeters for a person of the given height. ok is false when the
// height falls outside the supported range.
func Recommend(personCM int) (sitting, standing float64, ok bool) {
	if personCM < MinPersonHeight || personCM > MaxPersonHeight {
		return 0, 0, false
	}
	d := float64(personCM - MinPersonHeight)
	return baseSitting + d*sittingPerCM, baseStanding + d*standingPerCM, true
}
