package entity

// ModelDescriptor carries the identity and load state shared by every model
// variant. The loaded flag flips to true only after the underlying pipeline
// finished initializing without error.
type ModelDescriptor struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Loaded      bool   `json:"loaded"`
}

// Status returns the human-readable load state.
func (d ModelDescriptor) Status() string {
	if d.Loaded {
		return "Loaded"
	}
	return "Not Loaded"
}
