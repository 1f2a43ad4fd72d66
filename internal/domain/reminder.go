package domain

import "time"

// ReminderPriority orders reminders in the mobile client.
type ReminderPriority string

const (
	PriorityLow    ReminderPriority = "low"
	PriorityMedium ReminderPriority = "medium"
	PriorityHigh   ReminderPriority = "high"
)

// Valid reports whether p is a known priority.
func (p ReminderPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Reminder is a dated note, optionally tied to a category. Titles are unique
// per user at creation time.
type Reminder struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	DueDate     time.Time        `json:"dueDate"`
	Priority    ReminderPriority `json:"priority,omitempty"`
	Category    string           `json:"category,omitempty"`
	IsCompleted bool             `json:"isCompleted"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// ReminderUpdate is the allow-list of fields the update endpoint accepts.
type ReminderUpdate struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
	Priority    *ReminderPriority `json:"priority,omitempty"`
	Category    *string           `json:"category,omitempty"`
	IsCompleted *bool             `json:"isCompleted,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u ReminderUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil &&
		u.Priority == nil && u.Category == nil && u.IsCompleted == nil
}

// ReminderFilter narrows a reminder listing.
type ReminderFilter struct {
	Completed *bool
	Priority  ReminderPriority
	Limit     int
}
