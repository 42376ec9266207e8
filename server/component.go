package server

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/kbukum/launchpad/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*ServerComponent)(nil)
	_ component.Describable   = (*ServerComponent)(nil)
	_ component.RouteProvider = (*ServerComponent)(nil)
)

// ServerComponent exposes a Server to the component registry and the
// startup summary.
type ServerComponent struct {
	server *Server
}

// NewComponent returns a component.Component backed by the given Server.
func NewComponent(s *Server) *ServerComponent {
	return &ServerComponent{server: s}
}

// Name returns the component name used for registration.
func (sc *ServerComponent) Name() string { return componentName }

// Start binds and serves.
func (sc *ServerComponent) Start(ctx context.Context) error {
	return sc.server.Start(ctx)
}

// Stop gracefully shuts down the server.
func (sc *ServerComponent) Stop(ctx context.Context) error {
	return sc.server.Stop(ctx)
}

// Health reports healthy while the listener is accepting connections.
func (sc *ServerComponent) Health(ctx context.Context) component.Health {
	if sc.server.Listening() {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusUnhealthy,
		Message: "not listening",
	}
}

// Describe returns the summary line for the server.
func (sc *ServerComponent) Describe() component.Description {
	addr := sc.server.Addr()
	details := fmt.Sprintf("%s health=%s", addr, sc.server.HealthPath())
	if ha := sc.server.HealthAddr(); ha != "" {
		details += " health_addr=" + ha
	}
	port := 0
	if _, p, err := net.SplitHostPort(addr); err == nil {
		port, _ = strconv.Atoi(p)
	}
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: details,
		Port:    port,
	}
}

// Routes returns the system routes followed by the application catch-all.
func (sc *ServerComponent) Routes() []component.Route {
	ginRoutes := sc.server.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]component.Route, 0, len(ginRoutes)+1)
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler) + " ⚙️",
		})
	}
	return append(routes, component.Route{Method: "*", Path: "/*", Handler: "application"})
}

// formatHandlerName turns gin's handler name, e.g.
// "github.com/kbukum/launchpad/server/endpoint.Health.func1", into "health".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	parts := strings.Split(name, ".")
	for i := len(parts) - 1; i >= 0; i-- {
		if !strings.HasPrefix(parts[i], "func") {
			if i == 0 {
				return parts[i]
			}
			return strings.ToLower(parts[i])
		}
	}
	return name
}

// methodOrder returns a sort key for HTTP methods (GET first).
func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "HEAD":
		return 1
	case "POST":
		return 2
	case "PUT":
		return 3
	case "PATCH":
		return 4
	case "DELETE":
		return 5
	default:
		return 6
	}
}
