package paperlayout

// Role is the classification of a block. Roles are totally ordered: a claim
// only takes effect when the proposed role outranks the current one.
type Role int

const (
	RoleUnclassified Role = iota
	RoleText
	RoleHeader
	RoleMeta
	RoleImage
	RoleTable
	RoleRecurring
)

var roleNames = [...]string{
	RoleUnclassified: "unclassified",
	RoleText:         "text",
	RoleHeader:       "header",
	RoleMeta:         "meta",
	RoleImage:        "image",
	RoleTable:        "table",
	RoleRecurring:    "recurring",
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return "invalid"
	}
	return roleNames[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// resolveRole is the resolution function between a held and a proposed role.
func resolveRole(current, proposed Role) Role {
	if proposed > current {
		return proposed
	}
	return current
}

// RoleChange is one entry of a block's classification history.
type RoleChange struct {
	From   Role   `json:"from"`
	To     Role   `json:"to"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Claim proposes role for the block and reports whether it took effect.
func (b *Block) Claim(role Role, stage, reason string) bool {
	next := resolveRole(b.role, role)
	if next == b.role {
		return false
	}
	b.History = append(b.History, RoleChange{From: b.role, To: next, Stage: stage, Reason: reason})
	b.role = next
	return true
}

// Release drops role from the block, restoring whatever it held before the
// claim being released. It is a no-op when the block does not hold role.
func (b *Block) Release(role Role, stage, reason string) bool {
	if b.role != role {
		return false
	}
	prev := RoleUnclassified
	for i := len(b.History) - 1; i >= 0; i-- {
		if b.History[i].To == role && b.History[i].From != role {
			prev = b.History[i].From
			break
		}
	}
	b.History = append(b.History, RoleChange{From: role, To: prev, Stage: stage, Reason: reason})
	b.role = prev
	return true
}
