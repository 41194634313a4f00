package entity

import "time"

// Status is the approval state of an account. Only an admin moves it.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRevoked  Status = "revoked"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRevoked:
		return true
	}
	return false
}

// TopicStatus is the review state of one syllabus topic.
type TopicStatus string

const (
	TopicNotStarted   TopicStatus = "not_started"
	TopicInProgress   TopicStatus = "in_progress"
	TopicFirstReview  TopicStatus = "first_review"
	TopicSecondReview TopicStatus = "second_review"
	TopicMastered     TopicStatus = "mastered"
)

// TopicStatuses lists the review states in cycling order.
var TopicStatuses = []TopicStatus{
	TopicNotStarted,
	TopicInProgress,
	TopicFirstReview,
	TopicSecondReview,
	TopicMastered,
}

func (s TopicStatus) Valid() bool {
	for _, v := range TopicStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Next returns the following review state, wrapping from mastered back to
// not started. Unknown states restart the cycle.
func (s TopicStatus) Next() TopicStatus {
	for i, v := range TopicStatuses {
		if v == s {
			return TopicStatuses[(i+1)%len(TopicStatuses)]
		}
	}
	return TopicNotStarted
}

// ConceptMapNode is a read-only outline of a topic.
type ConceptMapNode struct {
	Title    string           `json:"title"`
	Children []ConceptMapNode `json:"children,omitempty"`
}

func (n *ConceptMapNode) clone() *ConceptMapNode {
	if n == nil {
		return nil
	}
	c := &ConceptMapNode{Title: n.Title}
	if n.Children != nil {
		c.Children = make([]ConceptMapNode, len(n.Children))
		for i := range n.Children {
			c.Children[i] = *n.Children[i].clone()
		}
	}
	return c
}

type Topic struct {
	ID         int             `json:"id"`
	Title      string          `json:"title"`
	Status     TopicStatus     `json:"status"`
	ConceptMap *ConceptMapNode `json:"concept_map,omitempty"`
}

// DateLayout is the wall-clock calendar date format of planner tasks.
const DateLayout = "2006-01-02"

// FormatDate renders t as a local calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

type PlannerTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// UserData is the mutable study record embedded in every profile.
type UserData struct {
	Topics []Topic       `json:"topics"`
	Tasks  []PlannerTask `json:"tasks"`
}

// Clone returns a deep copy of d.
func (d UserData) Clone() UserData {
	out := UserData{}
	if d.Topics != nil {
		out.Topics = make([]Topic, len(d.Topics))
		for i, t := range d.Topics {
			t.ConceptMap = t.ConceptMap.clone()
			out.Topics[i] = t
		}
	}
	if d.Tasks != nil {
		out.Tasks = make([]PlannerTask, len(d.Tasks))
		copy(out.Tasks, d.Tasks)
	}
	return out
}

// User is the profile record stored in the users collection.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Reason    string    `json:"reason,omitempty"`
	Status    Status    `json:"status"`
	IsAdmin   bool      `json:"is_admin"`
	Data      UserData  `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Data = u.Data.Clone()
	return &c
}

// IsActiveAdmin reports whether u may use admin-only operations.
func (u *User) IsActiveAdmin() bool {
	return u != nil && u.IsAdmin && u.Status == StatusApproved
}
