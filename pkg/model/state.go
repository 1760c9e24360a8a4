package model

// State is the lifecycle state shared by organizations and identity providers.
type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
)

func (s State) IsValid() bool {
	return s == StateActive || s == StateInactive
}
