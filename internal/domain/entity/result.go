package entity

import "fmt"

// Prediction is one ranked classification entry. Confidence is preformatted
// as a percentage string with two decimal places (e.g. "87.34%").
type Prediction struct {
	Rank       int    `json:"rank"`
	Label      string `json:"label"`
	Confidence string `json:"confidence"`
}

// ClassificationResult is ordered by descending confidence, re-numbered 1..k.
type ClassificationResult []Prediction

// VideoResult describes one successfully generated video clip.
type VideoResult struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	File       string `json:"file"`
	Preview    string `json:"preview"`
	Frames     int    `json:"frames"`
	FPS        int    `json:"fps"`
	Format     string `json:"format"`
	Resolution string `json:"resolution"`
}

// Duration is always frame count over fps; it is derived, never stored.
func (r VideoResult) Duration() float64 {
	if r.FPS == 0 {
		return 0
	}
	return float64(r.Frames) / float64(r.FPS)
}

// DurationLabel renders the duration the way the result message shows it,
// e.g. "3.0 seconds".
func (r VideoResult) DurationLabel() string {
	return fmt.Sprintf("%.1f seconds", r.Duration())
}
