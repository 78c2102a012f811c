package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/voxkit/component"
	"github.com/kbukum/voxkit/observability"
)

// Summary renders the startup overview: components with their live health
// and the HTTP routes of route-providing components.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a new startup summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Render returns the summary text for the components in registry.
func (s *Summary) Render(ctx context.Context, registry *component.Registry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n🚀 %s %s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	comps := registry.All()
	if len(comps) == 0 {
		b.WriteString("   └── No components registered\n")
		return b.String()
	}

	b.WriteString("📦 Components\n")
	var routes []component.Route
	healthy := 0
	for i, c := range comps {
		desc := component.Description{Name: c.Name(), Type: c.Name()}
		if d, ok := c.(component.Describable); ok {
			desc = d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}

		h := c.Health(ctx)
		if h.Status == observability.HealthStatusUp {
			healthy++
		}
		line := fmt.Sprintf("%s %s [%s]", healthStatusIcon(h.Status), desc.Name, desc.Type)
		if desc.Details != "" {
			line += ": " + desc.Details
		}
		if desc.Port > 0 {
			line += fmt.Sprintf(" (:%d)", desc.Port)
		}
		if h.Status != observability.HealthStatusUp && h.Message != "" {
			line += fmt.Sprintf(" (%s: %s)", h.Status, h.Message)
		}
		fmt.Fprintf(&b, "   %s %s\n", treePrefix(i, len(comps)), line)
	}
	b.WriteString("\n")
	if healthy == len(comps) {
		fmt.Fprintf(&b, "✅ All components healthy (%d/%d)\n", healthy, len(comps))
	} else {
		fmt.Fprintf(&b, "⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(comps))
	}

	if len(routes) > 0 {
		b.WriteString("\n🌐 Routes\n")
		for i, r := range routes {
			fmt.Fprintf(&b, "   %s %-6s %s\n", treePrefix(i, len(routes)), r.Method, r.Path)
		}
	}
	return b.String()
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status observability.HealthStatus) string {
	switch status {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	case observability.HealthStatusDown:
		return "❌"
	default:
		return "❓"
	}
}
