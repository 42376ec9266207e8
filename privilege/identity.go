package privilege

import (
	"fmt"
	"os/user"
	"strconv"
)

// Identity is a resolved user and group.
type Identity struct {
	User  string `json:"user"`
	Group string `json:"group"`
	UID   int    `json:"uid"`
	GID   int    `json:"gid"`
}

// LookupFunc resolves a user and group name to numeric IDs.
type LookupFunc func(userName, groupName string) (Identity, error)

// LookupIdentity resolves names through the system account database.
// An empty group name selects the user's primary group.
func LookupIdentity(userName, groupName string) (Identity, error) {
	u, err := user.Lookup(userName)
	if err != nil {
		return Identity{}, err
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return Identity{}, fmt.Errorf("non-numeric uid %q for user %s", u.Uid, userName)
	}

	gidStr := u.Gid
	if groupName != "" {
		g, err := user.LookupGroup(groupName)
		if err != nil {
			return Identity{}, err
		}
		gidStr = g.Gid
	} else if g, err := user.LookupGroupId(u.Gid); err == nil {
		groupName = g.Name
	}
	gid, err := strconv.Atoi(gidStr)
	if err != nil {
		return Identity{}, fmt.Errorf("non-numeric gid %q for group %s", gidStr, groupName)
	}

	return Identity{User: userName, Group: groupName, UID: uid, GID: gid}, nil
}
