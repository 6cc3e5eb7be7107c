package model

import "time"

// ClientStatus is the commercial state of a client.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusProspect ClientStatus = "prospect"
)

// Client is a customer of the freelance business.
type Client struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Company   string       `json:"company"`
	Address   string       `json:"address"`
	Website   string       `json:"website"`
	Notes     string       `json:"notes"`
	Status    ClientStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Normalize fills defaults for omitted fields.
func (c *Client) Normalize() {
	if c.Status == "" {
		c.Status = ClientStatusActive
	}
}

// Validate checks field constraints.
func (c *Client) Validate() error {
	return firstError(
		required("name", c.Name),
		maxLen("name", c.Name, 255),
		maxLen("email", c.Email, 255),
		maxLen("phone", c.Phone, 64),
		maxLen("company", c.Company, 255),
		maxLen("website", c.Website, 512),
		oneOf("status", string(c.Status),
			string(ClientStatusActive), string(ClientStatusInactive), string(ClientStatusProspect)),
	)
}

// Variables exposes client fields for document placeholders.
func (c *Client) Variables() map[string]string {
	return map[string]string{
		"client.id":      itoa(c.ID),
		"client.name":    c.Name,
		"client.email":   c.Email,
		"client.phone":   c.Phone,
		"client.company": c.Company,
		"client.address": c.Address,
		"client.website": c.Website,
	}
}

// SetID sets the primary key.
func (c *Client) SetID(id int64) { c.ID = id }

// GetID returns the primary key.
func (c *Client) GetID() int64 { return c.ID }
