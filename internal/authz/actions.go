package authz

// Permission names carried in the access token. They are capabilities
// granted independently of resource ownership; each one overrides the
// default rule of the actions that reference it.
const (
	// Users
	PermUserListRead      = "user:list:read"
	PermUserFullNameWrite = "user:fullName:write"
	PermUserDataRead      = "user:data:read"
	PermUserRolesRead     = "user:roles:read"
	PermUserRolesWrite    = "user:roles:write"
	PermUserBlockRead     = "user:block:read"
	PermUserBlockWrite    = "user:block:write"

	// Courses
	PermCourseAdd       = "course:add"
	PermCourseDel       = "course:del"
	PermCourseInfoWrite = "course:info:write"
	PermCourseTestList  = "course:testList"
	PermCourseTestRead  = "course:test:read"
	PermCourseTestWrite = "course:test:write"
	PermCourseTestAdd   = "course:test:add"
	PermCourseTestDel   = "course:test:del"
	PermCourseUserList  = "course:userList"
	PermCourseUserAdd   = "course:user:add"
	PermCourseUserDel   = "course:user:del"

	// Questions
	PermQuestListRead = "quest:list:read"
	PermQuestRead     = "quest:read"
	PermQuestCreate   = "quest:create"
	PermQuestUpdate   = "quest:update"
	PermQuestDel      = "quest:del"

	// Tests
	PermTestQuestAdd    = "test:quest:add"
	PermTestQuestDel    = "test:quest:del"
	PermTestQuestUpdate = "test:quest:update"
	PermTestAnswerRead  = "test:answer:read"
)

// Action identifies one guarded operation.
type Action string

const (
	ActionUserList        Action = "user.list"
	ActionUserGet         Action = "user.get"
	ActionUserSetFullName Action = "user.set_full_name"
	ActionUserRolesRead   Action = "user.roles.read"
	ActionUserRolesWrite  Action = "user.roles.write"
	ActionUserBlockRead   Action = "user.block.read"
	ActionUserBlockWrite  Action = "user.block.write"
	ActionUserDataRead    Action = "user.data.read"

	ActionCourseList       Action = "course.list"
	ActionCourseGet        Action = "course.get"
	ActionCourseCreate     Action = "course.create"
	ActionCourseUpdate     Action = "course.update"
	ActionCourseDelete     Action = "course.delete"
	ActionCourseStudents   Action = "course.students"
	ActionCourseEnroll     Action = "course.enroll"
	ActionCourseUnenroll   Action = "course.unenroll"
	ActionCourseTestList   Action = "course.test.list"
	ActionCourseTestGet    Action = "course.test.get"
	ActionCourseTestCreate Action = "course.test.create"
	ActionCourseTestWrite  Action = "course.test.write"
	ActionCourseTestDelete Action = "course.test.delete"

	ActionQuestionList   Action = "question.list"
	ActionQuestionGet    Action = "question.get"
	ActionQuestionCreate Action = "question.create"
	ActionQuestionRevise Action = "question.revise"
	ActionQuestionDelete Action = "question.delete"

	ActionTestQuestionAdd   Action = "test.question.add"
	ActionTestQuestionDel   Action = "test.question.del"
	ActionTestQuestionOrder Action = "test.question.order"
	ActionTestAnswersRead   Action = "test.answers.read"
)

// DefaultRule is the access granted when the actor holds no override
// permission for the action.
type DefaultRule int

const (
	// DenyAll: nobody passes without the override permission.
	DenyAll DefaultRule = iota
	// AllowAll: everyone passes.
	AllowAll
	// OwnerOnly: only the resource owner passes.
	OwnerOnly
	// SelfOnly: only an actor targeting themselves passes.
	SelfOnly
	// SelfOrOwner: the attempt/data subject or the resource owner passes.
	SelfOrOwner
	// OwnerOrEnrolled: the owner, or a user enrolled in the owning
	// course, passes (read-side visibility only).
	OwnerOrEnrolled
)

// Rule pairs an action's default access with the permission that
// overrides it.
type Rule struct {
	Default  DefaultRule
	Override string
}

// rules is the full policy table. Keeping it declarative makes the
// policy auditable in one screen instead of being re-derived from
// scattered conditionals.
var rules = map[Action]Rule{
	ActionUserList:        {Default: DenyAll, Override: PermUserListRead},
	ActionUserGet:         {Default: AllowAll},
	ActionUserSetFullName: {Default: SelfOnly, Override: PermUserFullNameWrite},
	ActionUserRolesRead:   {Default: DenyAll, Override: PermUserRolesRead},
	ActionUserRolesWrite:  {Default: DenyAll, Override: PermUserRolesWrite},
	ActionUserBlockRead:   {Default: DenyAll, Override: PermUserBlockRead},
	ActionUserBlockWrite:  {Default: DenyAll, Override: PermUserBlockWrite},
	ActionUserDataRead:    {Default: SelfOnly, Override: PermUserDataRead},

	ActionCourseList:       {Default: AllowAll},
	ActionCourseGet:        {Default: AllowAll},
	ActionCourseCreate:     {Default: DenyAll, Override: PermCourseAdd},
	ActionCourseUpdate:     {Default: OwnerOnly, Override: PermCourseInfoWrite},
	ActionCourseDelete:     {Default: OwnerOnly, Override: PermCourseDel},
	ActionCourseStudents:   {Default: OwnerOnly, Override: PermCourseUserList},
	ActionCourseEnroll:     {Default: SelfOnly, Override: PermCourseUserAdd},
	ActionCourseUnenroll:   {Default: SelfOnly, Override: PermCourseUserDel},
	ActionCourseTestList:   {Default: OwnerOrEnrolled, Override: PermCourseTestList},
	ActionCourseTestGet:    {Default: OwnerOrEnrolled, Override: PermCourseTestRead},
	ActionCourseTestCreate: {Default: OwnerOnly, Override: PermCourseTestAdd},
	ActionCourseTestWrite:  {Default: OwnerOnly, Override: PermCourseTestWrite},
	ActionCourseTestDelete: {Default: OwnerOnly, Override: PermCourseTestDel},

	ActionQuestionList:   {Default: OwnerOnly, Override: PermQuestListRead},
	ActionQuestionGet:    {Default: OwnerOnly, Override: PermQuestRead},
	ActionQuestionCreate: {Default: DenyAll, Override: PermQuestCreate},
	ActionQuestionRevise: {Default: OwnerOnly, Override: PermQuestUpdate},
	ActionQuestionDelete: {Default: OwnerOnly, Override: PermQuestDel},

	ActionTestQuestionAdd:   {Default: OwnerOnly, Override: PermTestQuestAdd},
	ActionTestQuestionDel:   {Default: OwnerOnly, Override: PermTestQuestDel},
	ActionTestQuestionOrder: {Default: OwnerOnly, Override: PermTestQuestUpdate},
	ActionTestAnswersRead:   {Default: SelfOrOwner, Override: PermTestAnswerRead},
}

// RuleFor exposes the table entry for an action; unknown actions get a
// deny-all rule with no override.
func RuleFor(action Action) Rule {
	if r, ok := rules[action]; ok {
		return r
	}
	return Rule{Default: DenyAll}
}
