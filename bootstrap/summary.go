package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/launchpad/component"
	"github.com/kbukum/launchpad/privilege"
)

// Summary renders the startup report printed once the service is LISTENING.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	identity        *privilege.Result
	extra           []component.Description
	out             io.Writer
}

// NewSummary creates a summary writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) { s.out = w }

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// SetIdentity records the outcome of the privilege step.
func (s *Summary) SetIdentity(r privilege.Result) { s.identity = &r }

// AddInfrastructure adds a line for something outside the registry, such
// as the upstream the application handler forwards to.
func (s *Summary) AddInfrastructure(d component.Description) {
	s.extra = append(s.extra, d)
}

// serverView is the part of the server component the summary reads.
type serverView interface {
	component.Describable
	component.RouteProvider
	Health(ctx context.Context) component.Health
}

// Display prints the summary. srv may be nil.
func (s *Summary) Display(ctx context.Context, registry *component.Registry, srv serverView) {
	w := s.out
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n🚀 %s v%s listening after %.2fs\n\n", s.serviceName, version, s.startupDuration.Seconds())

	var infra []component.Description
	if srv != nil {
		infra = append(infra, srv.Describe())
	}
	if registry != nil {
		infra = append(infra, registry.Describe()...)
	}
	infra = append(infra, s.extra...)
	if len(infra) > 0 {
		fmt.Fprintf(w, "📊 Infrastructure\n")
		for i, d := range infra {
			details := d.Details
			if d.Port > 0 && !strings.Contains(details, fmt.Sprintf(":%d", d.Port)) {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(w, "   %s %s: %s\n", treePrefix(i, len(infra)), d.Name, details)
		}
		fmt.Fprintf(w, "\n")
	}

	if s.identity != nil {
		fmt.Fprintf(w, "🔒 Identity\n")
		id := s.identity.Identity
		switch s.identity.Outcome {
		case privilege.OutcomeDropped:
			fmt.Fprintf(w, "   └── %s:%s (uid=%d gid=%d)\n", id.User, id.Group, id.UID, id.GID)
		default:
			fmt.Fprintf(w, "   └── %s (uid=%d gid=%d)\n", s.identity.Outcome, id.UID, id.GID)
		}
		fmt.Fprintf(w, "\n")
	}

	if srv != nil {
		routes := srv.Routes()
		fmt.Fprintf(w, "🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
		fmt.Fprintf(w, "\n")
	}

	var results []component.Health
	if srv != nil {
		results = append(results, srv.Health(ctx))
	}
	if registry != nil {
		results = append(results, registry.HealthAll(ctx)...)
	}
	if len(results) > 0 {
		fmt.Fprintf(w, "🏥 Health Check\n")
		healthy := 0
		for i, h := range results {
			msg := ""
			if h.Message != "" {
				msg = " - " + h.Message
			}
			if h.Status == component.StatusHealthy {
				healthy++
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
		}
		fmt.Fprintf(w, "\n")
		if healthy == len(results) {
			fmt.Fprintf(w, "✅ All components healthy (%d/%d)\n", healthy, len(results))
		} else {
			fmt.Fprintf(w, "⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(results))
		}
	}
	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
