package endpoint

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/launchpad/version"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// IdentityFunc reports the effective uid and gid the process runs as.
type IdentityFunc func() (uid, gid int)

// Info returns a handler that reports service metadata and the identity
// requests are served under.
func Info(serviceName, serviceVersion, environment string, identity IdentityFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, gid := os.Geteuid(), os.Getegid()
		if identity != nil {
			uid, gid = identity()
		}
		v := version.Get()
		c.JSON(http.StatusOK, gin.H{
			"service":     serviceName,
			"version":     serviceVersion,
			"environment": environment,
			"git_commit":  v.GitCommit,
			"go_version":  v.GoVersion,
			"pid":         os.Getpid(),
			"uid":         uid,
			"gid":         gid,
			"uptime":      time.Since(startTime).Round(time.Second).String(),
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
