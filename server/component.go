package server

import (
	"context"
	"fmt"

	"github.com/kbukum/voxkit/component"
	"github.com/kbukum/voxkit/observability"
)

// ServerComponent registers a Server with the bootstrap app. Start and Stop
// come from the embedded Server.
type ServerComponent struct {
	*Server
}

var (
	_ component.Component     = ServerComponent{}
	_ component.Describable   = ServerComponent{}
	_ component.RouteProvider = ServerComponent{}
)

// NewComponent wraps s for component registration.
func NewComponent(s *Server) ServerComponent { return ServerComponent{Server: s} }

func (ServerComponent) Name() string { return "http-server" }

// Health is down until the listener is bound.
func (c ServerComponent) Health(context.Context) observability.Health {
	if !c.Running() {
		return observability.Health{Name: c.Name(), Status: observability.HealthStatusDown, Message: "not listening"}
	}
	return observability.Health{
		Name:    c.Name(),
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"addr": c.Addr()},
	}
}

func (c ServerComponent) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d", c.config.Host, c.config.Port),
		Port:    c.config.Port,
	}
}

func (c ServerComponent) Routes() []component.Route { return routes(c.engine) }
