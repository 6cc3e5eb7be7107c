package model

import "time"

// AiPhoto is a generated image asset and the prompt that produced it.
type AiPhoto struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Prompt     string    `json:"prompt"`
	ImageURL   string    `json:"imageUrl"`
	StorageKey string    `json:"storageKey"`
	Model      string    `json:"model"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Normalize fills defaults for omitted fields.
func (p *AiPhoto) Normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// Validate checks field constraints.
func (p *AiPhoto) Validate() error {
	if p.Width < 0 {
		return invalid("width", "must not be negative")
	}
	if p.Height < 0 {
		return invalid("height", "must not be negative")
	}
	return firstError(
		maxLen("title", p.Title, 255),
		maxLen("imageUrl", p.ImageURL, 2048),
		maxLen("storageKey", p.StorageKey, 512),
		maxLen("model", p.Model, 128),
	)
}

// SetID sets the primary key.
func (p *AiPhoto) SetID(id int64) { p.ID = id }

// GetID returns the primary key.
func (p *AiPhoto) GetID() int64 { return p.ID }
