package models

// Status is the soft-delete lifecycle shared by every workspace entity.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// Allowed lifecycle moves. Nothing leaves Deleted and nothing returns to Active.
var statusTransitions = map[Status][]Status{
	StatusActive:   {StatusArchived, StatusDeleted},
	StatusArchived: {StatusDeleted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

func (s Status) IsActive() bool {
	return s == StatusActive
}

// CanTransitionTo reports whether an entity in status s may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
