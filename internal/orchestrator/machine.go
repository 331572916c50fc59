package orchestrator

import (
	"log/slog"

	"github.com/conduit-cli/conduit/internal/registry"
)

// machine logs the state transitions of one lifecycle operation.
type machine struct {
	log   *slog.Logger
	state State
}

func (o *Orchestrator) machine(op string, c registry.Component) *machine {
	m := &machine{
		log:   o.logger.With("op", op, "name", c.Name, "package", c.PackageID),
		state: StateRequested,
	}
	m.log.Info("lifecycle transition", "to", StateRequested)
	return m
}

func (m *machine) enter(next State, attrs ...any) {
	args := append([]any{"from", m.state, "to", next}, attrs...)
	switch next {
	case StateRejected, StateFailed:
		m.log.Warn("lifecycle transition", args...)
	default:
		m.log.Info("lifecycle transition", args...)
	}
	m.state = next
}
