//go:build linux

package privilege

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// System returns the calling process's credentials. Every setter applies
// to all threads of the process.
func System() Credentials { return systemCredentials{} }

type systemCredentials struct{}

func (systemCredentials) Getresuid() (int, int, int) { return unix.Getresuid() }
func (systemCredentials) Getresgid() (int, int, int) { return unix.Getresgid() }

// syscall.Setgroups runs on every thread; unix.Setgroups does not.
func (systemCredentials) Setgroups(gids []int) error { return syscall.Setgroups(gids) }

func (systemCredentials) Setresgid(r, e, s int) error { return unix.Setresgid(r, e, s) }
func (systemCredentials) Setresuid(r, e, s int) error { return unix.Setresuid(r, e, s) }
