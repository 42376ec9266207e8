package privilege

// Credentials is the set of process credential calls the Dropper needs.
type Credentials interface {
	Getresuid() (ruid, euid, suid int)
	Getresgid() (rgid, egid, sgid int)
	Setgroups(gids []int) error
	Setresgid(rgid, egid, sgid int) error
	Setresuid(ruid, euid, suid int) error
}
