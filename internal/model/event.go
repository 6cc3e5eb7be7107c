package model

import "time"

// Event is a calendar entry, optionally tied to a client.
type Event struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	AllDay      bool       `json:"allDay"`
	Color       string     `json:"color"`
	Location    string     `json:"location"`
	ClientID    *int64     `json:"clientId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Normalize drops an end date equal to the zero time.
func (e *Event) Normalize() {
	if e.EndDate != nil && e.EndDate.IsZero() {
		e.EndDate = nil
	}
}

// SetID sets the primary key.
func (e *Event) SetID(id int64) { e.ID = id }

// GetID returns the primary key.
func (e *Event) GetID() int64 { return e.ID }

// Validate checks field constraints.
func (e *Event) Validate() error {
	if e.StartDate.IsZero() {
		return invalid("startDate", "is required")
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return invalid("endDate", "must not be before startDate")
	}
	if e.ClientID != nil && *e.ClientID <= 0 {
		return invalid("clientId", "must be a valid client id")
	}
	return firstError(
		required("title", e.Title),
		maxLen("title", e.Title, 255),
		maxLen("color", e.Color, 32),
		maxLen("location", e.Location, 255),
	)
}

// EventWindow restricts event listings to a time range. Zero bounds are open.
type EventWindow struct {
	From time.Time
	To   time.Time
}
