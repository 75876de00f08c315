package state

// Membership is what the client knows about an id's presence in a remote set.
type Membership int

const (
	Unknown Membership = iota
	Member
	NotMember
)

func (m Membership) String() string {
	switch m {
	case Member:
		return "member"
	case NotMember:
		return "not member"
	default:
		return "unknown"
	}
}

// ContainmentSet mirrors a remote set (liked tracks, saved albums, followed artists)
// for the ids that have been checked.
type ContainmentSet struct {
	known map[string]bool
}

// Apply records remote answers. ids and answers are paired by position; extra entries on either side are ignored.
func (c *ContainmentSet) Apply(ids []string, answers []bool) {
	if c.known == nil {
		c.known = make(map[string]bool, len(ids))
	}
	for i, id := range ids {
		if i >= len(answers) {
			return
		}
		c.known[id] = answers[i]
	}
}

// Set records a single answer, used after a successful add or remove.
func (c *ContainmentSet) Set(id string, member bool) {
	c.Apply([]string{id}, []bool{member})
}

// Status returns the three-way membership of id.
func (c ContainmentSet) Status(id string) Membership {
	member, ok := c.known[id]
	switch {
	case !ok:
		return Unknown
	case member:
		return Member
	default:
		return NotMember
	}
}

// Contains is true only for ids known to be members.
func (c ContainmentSet) Contains(id string) bool {
	return c.known[id]
}

// Members returns every id known to be a member.
func (c ContainmentSet) Members() []string {
	ids := make([]string, 0, len(c.known))
	for id, member := range c.known {
		if member {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c ContainmentSet) clone() ContainmentSet {
	out := ContainmentSet{known: make(map[string]bool, len(c.known))}
	for k, v := range c.known {
		out.known[k] = v
	}
	return out
}
