// Package version carries the build metadata of the launchpad binary.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/launchpad/version.Version=1.4.0 \
//	  -X github.com/kbukum/launchpad/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Values missing from ldflags are filled from the module's embedded VCS
// information when available.
package version
