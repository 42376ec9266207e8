package privilege

import (
	"fmt"
	"sync"

	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/logger"
)

// Outcome says what Drop did.
type Outcome string

const (
	// OutcomeDisabled: no target identity configured.
	OutcomeDisabled Outcome = "disabled"
	// OutcomeUnprivileged: the process was not root; nothing changed.
	OutcomeUnprivileged Outcome = "already_unprivileged"
	// OutcomeDropped: the process now runs as the target identity.
	OutcomeDropped Outcome = "dropped"
)

// Result reports the effect of a Drop call.
type Result struct {
	Outcome  Outcome
	Identity Identity
}

// Changed reports whether the process identity was switched.
func (r Result) Changed() bool { return r.Outcome == OutcomeDropped }

// Dropper performs the one-way switch to an unprivileged identity.
type Dropper struct {
	creds  Credentials
	lookup LookupFunc
	log    *logger.Logger

	mu      sync.Mutex
	dropped *Result
}

// Option configures a Dropper.
type Option func(*Dropper)

// WithCredentials replaces the system credential calls.
func WithCredentials(c Credentials) Option {
	return func(d *Dropper) { d.creds = c }
}

// WithLookup replaces the account database lookup.
func WithLookup(fn LookupFunc) Option {
	return func(d *Dropper) { d.lookup = fn }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dropper) { d.log = l }
}

// NewDropper creates a Dropper bound to the process credentials.
func NewDropper(opts ...Option) *Dropper {
	d := &Dropper{
		creds:  System(),
		lookup: LookupIdentity,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.GetGlobalLogger()
	}
	d.log = d.log.WithComponent("privilege")
	return d
}

// Dropped reports whether this Dropper has switched identities.
func (d *Dropper) Dropped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped != nil
}

// Current returns the process's effective uid and gid.
func (d *Dropper) Current() (uid, gid int) {
	_, euid, _ := d.creds.Getresuid()
	_, egid, _ := d.creds.Getresgid()
	return euid, egid
}

// Drop switches the process to cfg's identity when it runs as root.
//
// A process that is not root is left unchanged. A missing account, a
// target of uid 0, or any failing credential call is a PRIVILEGE_ERROR.
// After a successful switch, further calls for the same identity return
// the earlier result and calls for another identity fail.
func (d *Dropper) Drop(cfg Config) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dropped != nil {
		if cfg.User == d.dropped.Identity.User && (cfg.Group == "" || cfg.Group == d.dropped.Identity.Group) {
			return *d.dropped, nil
		}
		return Result{}, errors.Privilege(cfg.String(),
			fmt.Sprintf("process already runs as %s", d.dropped.Identity.User))
	}

	if !cfg.Enabled() {
		return Result{Outcome: OutcomeDisabled}, nil
	}

	_, euid, _ := d.creds.Getresuid()
	if euid != 0 {
		_, egid, _ := d.creds.Getresgid()
		d.log.Info("process is not privileged, skipping identity switch", logger.Fields(
			logger.FieldUID, euid,
			logger.FieldGID, egid,
			"target", cfg.String(),
		))
		return Result{Outcome: OutcomeUnprivileged, Identity: Identity{UID: euid, GID: egid}}, nil
	}

	ident, err := d.lookup(cfg.User, cfg.Group)
	if err != nil {
		return Result{}, errors.Privilege(cfg.String(), "identity does not exist").WithCause(err)
	}
	if ident.UID == 0 {
		return Result{}, errors.Privilege(cfg.String(), "target identity is root")
	}

	if err := d.switchTo(ident); err != nil {
		return Result{}, errors.Privilege(cfg.String(), err.Error()).WithCause(err)
	}

	res := Result{Outcome: OutcomeDropped, Identity: ident}
	d.dropped = &res
	d.log.Info("privileges dropped", logger.Fields(
		"user", ident.User,
		"group", ident.Group,
		logger.FieldUID, ident.UID,
		logger.FieldGID, ident.GID,
	))
	return res, nil
}

// switchTo changes groups before the user ID; once the uid is dropped the
// process can no longer change its groups.
func (d *Dropper) switchTo(id Identity) error {
	if err := d.creds.Setgroups([]int{}); err != nil {
		return fmt.Errorf("clearing supplementary groups: %w", err)
	}
	if err := d.creds.Setresgid(id.GID, id.GID, id.GID); err != nil {
		return fmt.Errorf("setting gid %d: %w", id.GID, err)
	}
	if err := d.creds.Setresuid(id.UID, id.UID, id.UID); err != nil {
		return fmt.Errorf("setting uid %d: %w", id.UID, err)
	}
	return d.verify(id)
}

func (d *Dropper) verify(id Identity) error {
	ruid, euid, suid := d.creds.Getresuid()
	if ruid != id.UID || euid != id.UID || suid != id.UID {
		return fmt.Errorf("uid is %d/%d/%d after switch, want %d", ruid, euid, suid, id.UID)
	}
	rgid, egid, sgid := d.creds.Getresgid()
	if rgid != id.GID || egid != id.GID || sgid != id.GID {
		return fmt.Errorf("gid is %d/%d/%d after switch, want %d", rgid, egid, sgid, id.GID)
	}
	if err := d.creds.Setresuid(0, 0, 0); err == nil {
		return fmt.Errorf("uid 0 could be regained after switch")
	}
	return nil
}
