package model

type GatePassStatus string

const (
	GatePassStatusPending   GatePassStatus = "pending"
	GatePassStatusApproved  GatePassStatus = "approved"
	GatePassStatusRejected  GatePassStatus = "rejected"
	GatePassStatusCompleted GatePassStatus = "completed"
)

// Terminal reports whether no further lifecycle transition can apply.
func (s GatePassStatus) Terminal() bool {
	return s == GatePassStatusRejected || s == GatePassStatusCompleted
}

type DecisionOutcome string

const (
	DecisionApproved DecisionOutcome = "approved"
	DecisionRejected DecisionOutcome = "rejected"
)

type MemberRole string

const (
	RolePerson   MemberRole = "person"
	RoleApprover MemberRole = "approver"
	RoleGuard    MemberRole = "guard"
)

type ScanDirection string

const (
	ScanDirectionExit   ScanDirection = "exit"
	ScanDirectionReturn ScanDirection = "return"
)
