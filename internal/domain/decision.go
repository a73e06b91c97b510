package domain

// DecisionSource records how a launch arrived at its destination.
type DecisionSource string

const (
	SourceOverride  DecisionSource = "override"
	SourcePersisted DecisionSource = "persisted"
	SourceBootstrap DecisionSource = "bootstrap"
)

// Decision is the outcome of a launch. An empty URL means the native screen.
type Decision struct {
	URL    string         `json:"url"`
	Source DecisionSource `json:"source"`
}

// Native reports whether the decision selects the native screen.
func (d Decision) Native() bool {
	return d.URL == ""
}

// DecisionState is the persisted bootstrap outcome.
type DecisionState struct {
	WasChecked  bool   `json:"was_checked"`
	AcceptedURL string `json:"accepted_url"`
}
