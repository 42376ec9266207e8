// Package privilege switches a process started as root to a named
// unprivileged identity before it serves any request.
//
// The switch is one-way. Supplementary groups are cleared, then the real,
// effective and saved group IDs are set, then the user IDs. Afterwards the
// Dropper verifies that the effective identity is the target and that
// returning to uid 0 is refused by the kernel. A process that is already
// unprivileged is left alone.
//
//	d := privilege.NewDropper()
//	res, err := d.Drop(privilege.Config{User: "appuser"})
package privilege
