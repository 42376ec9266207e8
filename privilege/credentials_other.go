//go:build !linux

package privilege

import (
	"fmt"
	"os"
	"runtime"
)

// System returns credentials that report the process IDs and refuse to
// change them.
func System() Credentials { return unsupportedCredentials{} }

type unsupportedCredentials struct{}

func (unsupportedCredentials) Getresuid() (int, int, int) {
	return os.Getuid(), os.Geteuid(), os.Geteuid()
}

func (unsupportedCredentials) Getresgid() (int, int, int) {
	return os.Getgid(), os.Getegid(), os.Getegid()
}

func (unsupportedCredentials) Setgroups([]int) error         { return errUnsupported }
func (unsupportedCredentials) Setresgid(int, int, int) error { return errUnsupported }
func (unsupportedCredentials) Setresuid(int, int, int) error { return errUnsupported }

var errUnsupported = fmt.Errorf("credential changes are not supported on %s", runtime.GOOS)
