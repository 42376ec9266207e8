package privilege

// Config names the identity the service runs as after startup.
type Config struct {
	// User is the account to switch to. Empty disables the drop.
	User string `yaml:"user" mapstructure:"user"`
	// Group overrides the group to switch to. Empty selects the user's
	// primary group from the account database.
	Group string `yaml:"group" mapstructure:"group"`
}

// Enabled reports whether a drop was requested.
func (c Config) Enabled() bool {
	return c.User != ""
}

// String renders the identity as user or user:group.
func (c Config) String() string {
	if c.Group == "" || c.Group == c.User {
		return c.User
	}
	return c.User + ":" + c.Group
}
