package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func actorWith(userID uint, perms ...string) Actor {
	return Actor{UserID: userID, Permissions: NewPermissionSet(perms)}
}

func TestEngine_Authorize(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name    string
		actor   Actor
		action  Action
		own     Ownership
		allowed bool
	}{
		{
			name:    "allow all passes anyone",
			actor:   actorWith(1),
			action:  ActionCourseGet,
			allowed: true,
		},
		{
			name:    "deny all rejects without override",
			actor:   actorWith(1),
			action:  ActionCourseCreate,
			allowed: false,
		},
		{
			name:    "override permission grants denied action",
			actor:   actorWith(1, PermCourseAdd),
			action:  ActionCourseCreate,
			allowed: true,
		},
		{
			name:    "owner passes owner-only",
			actor:   actorWith(7),
			action:  ActionCourseUpdate,
			own:     Ownership{OwnerID: 7},
			allowed: true,
		},
		{
			name:    "non-owner fails owner-only",
			actor:   actorWith(8),
			action:  ActionCourseUpdate,
			own:     Ownership{OwnerID: 7},
			allowed: false,
		},
		{
			name:    "override beats owner-only",
			actor:   actorWith(8, PermCourseInfoWrite),
			action:  ActionCourseUpdate,
			own:     Ownership{OwnerID: 7},
			allowed: true,
		},
		{
			name:    "self passes self-only",
			actor:   actorWith(42),
			action:  ActionCourseEnroll,
			own:     Ownership{SubjectID: 42},
			allowed: true,
		},
		{
			name:    "other fails self-only",
			actor:   actorWith(7),
			action:  ActionCourseEnroll,
			own:     Ownership{SubjectID: 42},
			allowed: false,
		},
		{
			name:    "admin override enrolls others",
			actor:   actorWith(7, PermCourseUserAdd),
			action:  ActionCourseEnroll,
			own:     Ownership{SubjectID: 42},
			allowed: true,
		},
		{
			name:    "subject passes self-or-owner",
			actor:   actorWith(42),
			action:  ActionTestAnswersRead,
			own:     Ownership{SubjectID: 42, OwnerID: 7},
			allowed: true,
		},
		{
			name:    "owner passes self-or-owner",
			actor:   actorWith(7),
			action:  ActionTestAnswersRead,
			own:     Ownership{SubjectID: 42, OwnerID: 7},
			allowed: true,
		},
		{
			name:    "stranger fails self-or-owner",
			actor:   actorWith(99),
			action:  ActionTestAnswersRead,
			own:     Ownership{SubjectID: 42, OwnerID: 7},
			allowed: false,
		},
		{
			name:    "enrolled passes owner-or-enrolled",
			actor:   actorWith(42),
			action:  ActionCourseTestGet,
			own:     Ownership{OwnerID: 7, Enrolled: true},
			allowed: true,
		},
		{
			name:    "unenrolled fails owner-or-enrolled",
			actor:   actorWith(42),
			action:  ActionCourseTestGet,
			own:     Ownership{OwnerID: 7, Enrolled: false},
			allowed: false,
		},
		{
			name:    "owner passes owner-or-enrolled without enrollment",
			actor:   actorWith(7),
			action:  ActionCourseTestGet,
			own:     Ownership{OwnerID: 7},
			allowed: true,
		},
		{
			name:    "unknown action denies",
			actor:   actorWith(1),
			action:  Action("nonsense"),
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := engine.Authorize(tt.actor, tt.action, tt.own)
			assert.Equal(t, tt.allowed, decision.Allowed)
		})
	}
}

func TestEngine_DenialNamesRequiredPermission(t *testing.T) {
	engine := NewEngine()

	decision := engine.Authorize(actorWith(8), ActionCourseUpdate, Ownership{OwnerID: 7})

	assert.False(t, decision.Allowed)
	assert.Equal(t, PermCourseInfoWrite, decision.RequiredPermission)
	assert.NotEmpty(t, decision.Reason)
}

// A zero OwnerID must never match an actor; otherwise broken data would
// grant ownership to everyone with user ID zero semantics.
func TestEngine_ZeroOwnerNeverMatches(t *testing.T) {
	engine := NewEngine()

	decision := engine.Authorize(Actor{UserID: 0}, ActionCourseUpdate, Ownership{OwnerID: 0})

	assert.False(t, decision.Allowed)
}

func TestEngine_CustomRuleTable(t *testing.T) {
	engine := NewEngineWithRules(map[Action]Rule{
		Action("custom.read"): {Default: AllowAll},
	})

	assert.True(t, engine.Authorize(actorWith(1), Action("custom.read"), Ownership{}).Allowed)
	assert.False(t, engine.Authorize(actorWith(1), ActionCourseGet, Ownership{}).Allowed,
		"actions outside the custom table fall back to deny")
}

func TestPermissionSet(t *testing.T) {
	set := NewPermissionSet([]string{PermQuestCreate, PermQuestRead})

	assert.True(t, set.Has(PermQuestCreate))
	assert.False(t, set.Has(PermQuestDel))
	assert.Len(t, set.List(), 2)
}
