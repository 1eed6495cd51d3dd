package authz

// PermissionSet is the actor's named capabilities as extracted from the
// access token.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from the raw token claim.
func NewPermissionSet(perms []string) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(perm string) bool {
	_, ok := s[perm]
	return ok
}

func (s PermissionSet) List() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	return out
}

// Actor is the authenticated identity an operation runs as. It is
// re-derived from the request's credentials every time; decisions are
// never cached across requests.
type Actor struct {
	UserID      uint
	Permissions PermissionSet
}

// Ownership carries the resource-specific facts a default rule may need.
// Leave fields zero-valued when they do not apply to the action.
type Ownership struct {
	// OwnerID is the resource owner (course teacher, question author).
	OwnerID uint
	// SubjectID is the user the action targets (profile edits,
	// enrollment, attempt/answer reads).
	SubjectID uint
	// Enrolled reports whether the actor is enrolled in the owning
	// course, for read-side visibility rules.
	Enrolled bool
}

// Decision is the engine's verdict. On denial RequiredPermission names
// the override that would have granted access so callers can render an
// actionable error.
type Decision struct {
	Allowed            bool
	RequiredPermission string
	Reason             string
}

// Engine evaluates actions against the declarative rule table.
type Engine struct {
	rules map[Action]Rule
}

// NewEngine creates an engine over the default policy table.
func NewEngine() *Engine {
	return &Engine{rules: rules}
}

// NewEngineWithRules creates an engine over a custom table (tests).
func NewEngineWithRules(table map[Action]Rule) *Engine {
	return &Engine{rules: table}
}

// Authorize decides whether the actor may perform the action. The
// override permission grants access regardless of the default rule; the
// default rule is consulted only when the override is absent.
func (e *Engine) Authorize(actor Actor, action Action, own Ownership) Decision {
	rule, ok := e.rules[action]
	if !ok {
		rule = Rule{Default: DenyAll}
	}

	if rule.Override != "" && actor.Permissions.Has(rule.Override) {
		return Decision{Allowed: true}
	}

	switch rule.Default {
	case AllowAll:
		return Decision{Allowed: true}
	case OwnerOnly:
		if own.OwnerID != 0 && own.OwnerID == actor.UserID {
			return Decision{Allowed: true}
		}
		return e.deny(rule, "not the resource owner")
	case SelfOnly:
		if own.SubjectID != 0 && own.SubjectID == actor.UserID {
			return Decision{Allowed: true}
		}
		return e.deny(rule, "not acting on own resource")
	case SelfOrOwner:
		if own.SubjectID != 0 && own.SubjectID == actor.UserID {
			return Decision{Allowed: true}
		}
		if own.OwnerID != 0 && own.OwnerID == actor.UserID {
			return Decision{Allowed: true}
		}
		return e.deny(rule, "neither the subject nor the resource owner")
	case OwnerOrEnrolled:
		if own.OwnerID != 0 && own.OwnerID == actor.UserID {
			return Decision{Allowed: true}
		}
		if own.Enrolled {
			return Decision{Allowed: true}
		}
		return e.deny(rule, "not the owner and not enrolled")
	default:
		return e.deny(rule, "denied by default")
	}
}

func (e *Engine) deny(rule Rule, reason string) Decision {
	return Decision{
		Allowed:            false,
		RequiredPermission: rule.Override,
		Reason:             reason,
	}
}
