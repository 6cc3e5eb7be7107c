package model

import "time"

// Prompt is a reusable text snippet.
type Prompt struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Normalize fills defaults for omitted fields.
func (p *Prompt) Normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// Validate checks field constraints.
func (p *Prompt) Validate() error {
	return firstError(
		required("title", p.Title),
		maxLen("title", p.Title, 255),
		required("content", p.Content),
		maxLen("category", p.Category, 128),
	)
}

// SetID sets the primary key.
func (p *Prompt) SetID(id int64) { p.ID = id }

// GetID returns the primary key.
func (p *Prompt) GetID() int64 { return p.ID }
