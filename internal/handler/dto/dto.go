// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/mirotrak/mirotrak/internal/model"

// ErrorResponse represents an API error. Message is meant for end users.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
}

// ListResponse wraps collection responses.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// NewList returns a ListResponse that always encodes data as an array.
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items}
}

// SettingRequest is the body of PUT /settings/{key}.
type SettingRequest struct {
	Value model.SettingValue `json:"value"`
}

// BulkPhotosRequest is the body of POST /ai-photos/bulk.
type BulkPhotosRequest struct {
	Photos []*model.AiPhoto `json:"photos"`
}

// PresignRequest is the body of POST /ai-photos/presign.
type PresignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// ImportResponse reports a successful database import.
type ImportResponse struct {
	Message      string              `json:"message"`
	Imported     *model.ImportResult `json:"imported"`
	SettingsMode model.SettingsMode  `json:"settingsMode"`
}

// RenderDocumentRequest is the body of POST /documents/render.
type RenderDocumentRequest struct {
	Format    string            `json:"format"`
	Title     string            `json:"title"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	ClientID  int64             `json:"clientId"`
	Variables map[string]string `json:"variables"`
}
