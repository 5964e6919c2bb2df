package srv

import (
	"github.com/quka-ai/workbench/pkg/socket/relay"
	"github.com/quka-ai/workbench/pkg/types"
)

type Srv struct {
	ai          *AI
	github      RepoCreator
	provisioner Provisioner
	hub         *relay.Hub
	strategy    types.DispatchStrategy
}

type ApplyFunc func(s *Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	a := &Srv{
		hub: relay.NewHub(),
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (s *Srv) AI() *AI {
	return s.ai
}

// GitHub returns nil when no token is configured.
func (s *Srv) GitHub() RepoCreator {
	return s.github
}

// Provisioner returns nil when the provisioning binary was not found at startup.
func (s *Srv) Provisioner() Provisioner {
	return s.provisioner
}

func (s *Srv) RelayHub() *relay.Hub {
	return s.hub
}

// Strategy reports how chat is answered: a forced strategy first, then whether the provisioner binary was found.
func (s *Srv) Strategy() types.DispatchStrategy {
	if s.strategy != "" {
		return s.strategy
	}
	if s.provisioner != nil {
		return types.STRATEGY_PROVISIONER
	}
	return types.STRATEGY_API
}

func WithStrategy(strategy types.DispatchStrategy) ApplyFunc {
	return func(s *Srv) {
		s.strategy = strategy
	}
}
