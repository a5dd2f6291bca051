package models

// Role partitions the user directory
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// Roles lists every role in display order (candidates first)
var Roles = []Role{RoleCandidate, RoleRecruiter}

// Valid reports whether the role is one the backend knows
func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleRecruiter
}

// Title returns the role name with a leading capital
func (r Role) Title() string {
	switch r {
	case RoleCandidate:
		return "Candidate"
	case RoleRecruiter:
		return "Recruiter"
	}
	return string(r)
}

// Priority is the scheduling priority of a user
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// User is a candidate or recruiter as returned by the backend
type User struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Role     Role     `json:"user_type"`
	Priority Priority `json:"priority,omitempty"`
}

// DisplayPriority returns the priority, defaulting to medium when unset
func (u User) DisplayPriority() Priority {
	if u.Priority == "" {
		return PriorityMedium
	}
	return u.Priority
}

// CreateUserRequest is the body of POST /users/
type CreateUserRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Role     Role     `json:"user_type"`
	Priority Priority `json:"priority"`
}
