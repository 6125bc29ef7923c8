package models

import "strings"

// TaskStatus is a column on the planning board.
type TaskStatus string

const (
	StatusUnassigned TaskStatus = "unassigned"
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// BoardColumns lists the board columns in display order.
var BoardColumns = []TaskStatus{StatusUnassigned, StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s names a known board column.
func (s TaskStatus) Valid() bool {
	for _, column := range BoardColumns {
		if s == column {
			return true
		}
	}
	return false
}

// Task is a card on the planning board.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     string     `json:"due_date,omitempty"` // YYYY-MM-DD
	Tags        []string   `json:"tags"`
}

// HasTag reports whether the task carries the named tag. Tag names compare
// case-insensitively; "Work" and "work" are the same tag.
func (t Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if strings.EqualFold(tag, name) {
			return true
		}
	}
	return false
}

// User is the authenticated account profile.
type User struct {
	ID               int64  `json:"id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	SubscriptionPlan string `json:"subscription_plan,omitempty"`
	TokenBalance     int    `json:"token_balance"`
	ProfilePicture   string `json:"profile_picture_url,omitempty"`
}

// FullName returns the user's display name.
func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
