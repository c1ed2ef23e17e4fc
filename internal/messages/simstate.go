package messages

import "fmt"

// Simulation state values carried by SimState messages.
const (
	SimStateRunning = "running"
	SimStateStopped = "stopped"
)

// SimState announces a simulation-wide state change from the manager.
type SimState struct {
	Base
	State       string `json:"SimState"`
	Name        string `json:"Name,omitempty"`
	Description string `json:"Description,omitempty"`
}

func init() {
	Register(TypeSimState, func() Message { return &SimState{} })
}

// Validate checks the envelope and the state value.
func (m *SimState) Validate() error {
	if err := m.Base.validate(); err != nil {
		return err
	}
	switch m.State {
	case SimStateRunning, SimStateStopped:
		return nil
	default:
		return fmt.Errorf("invalid simulation state %q", m.State)
	}
}
