package dependency

import (
	"github.com/kbukum/launchpad/component"
	"github.com/kbukum/launchpad/logger"
)

// Components builds one check per configured dependency, Redis first.
func Components(cfg Config, log *logger.Logger) []component.Component {
	cfg.ApplyDefaults()
	var out []component.Component
	if cfg.RedisURL != "" {
		out = append(out, NewRedis(cfg, log))
	}
	for _, addr := range cfg.TCP {
		out = append(out, NewTCP(addr, cfg))
	}
	return out
}
