package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mirotrak/mirotrak/internal/handler/dto"
	"github.com/mirotrak/mirotrak/internal/model"
)

// ClientLister lists clients.
type ClientLister interface {
	ListClients(ctx context.Context) ([]*model.Client, error)
}

// SubscriptionLister lists subscriptions, optionally for one client.
type SubscriptionLister interface {
	ListSubscriptions(ctx context.Context, clientID int64) ([]*model.Subscription, error)
}

// EventLister lists events within a window.
type EventLister interface {
	ListEvents(ctx context.Context, window model.EventWindow) ([]*model.Event, error)
}

// PromptLister lists prompts, optionally for one category.
type PromptLister interface {
	ListPrompts(ctx context.Context, category string) ([]*model.Prompt, error)
}

// AiPhotoLister lists AI photos.
type AiPhotoLister interface {
	ListAiPhotos(ctx context.Context) ([]*model.AiPhoto, error)
}

// ListClients handles GET /api/clients.
func ListClients(store ClientLister) ListFunc[*model.Client] {
	return func(r *http.Request) ([]*model.Client, error) {
		return store.ListClients(r.Context())
	}
}

// ListSubscriptions handles GET /api/subscriptions?clientId=.
func ListSubscriptions(store SubscriptionLister) ListFunc[*model.Subscription] {
	return func(r *http.Request) ([]*model.Subscription, error) {
		var clientID int64
		if raw := r.URL.Query().Get("clientId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return nil, &model.ValidationError{Field: "clientId", Message: "must be a positive integer"}
			}
			clientID = id
		}
		return store.ListSubscriptions(r.Context(), clientID)
	}
}

// ListEvents handles GET /api/events?from=&to=.
func ListEvents(store EventLister) ListFunc[*model.Event] {
	return func(r *http.Request) ([]*model.Event, error) {
		query := r.URL.Query()

		var window model.EventWindow
		var err error
		if window.From, err = parseBound("from", query.Get("from")); err != nil {
			return nil, err
		}
		if window.To, err = parseBound("to", query.Get("to")); err != nil {
			return nil, err
		}
		if !window.From.IsZero() && !window.To.IsZero() && window.To.Before(window.From) {
			return nil, &model.ValidationError{Field: "to", Message: "must not be before from"}
		}

		return store.ListEvents(r.Context(), window)
	}
}

// parseBound accepts RFC 3339 timestamps and plain dates. Empty means open.
func parseBound(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, &model.ValidationError{Field: field, Message: "must be a date or RFC 3339 timestamp"}
	}
	return d.Time, nil
}

// ListPrompts handles GET /api/prompts?category=.
func ListPrompts(store PromptLister) ListFunc[*model.Prompt] {
	return func(r *http.Request) ([]*model.Prompt, error) {
		return store.ListPrompts(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
	}
}

// ListAiPhotos handles GET /api/ai-photos.
func ListAiPhotos(store AiPhotoLister) ListFunc[*model.AiPhoto] {
	return func(r *http.Request) ([]*model.AiPhoto, error) {
		return store.ListAiPhotos(r.Context())
	}
}

// ClientGetter loads one client.
type ClientGetter interface {
	Get(ctx context.Context, id int64) (*model.Client, error)
}

// ClientSubscriptions handles GET /api/clients/{id}/subscriptions.
func ClientSubscriptions(clients ClientGetter, store SubscriptionLister, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			respondError(w, r, logger, err)
			return
		}

		if _, err := clients.Get(r.Context(), id); err != nil {
			respondError(w, r, logger, err)
			return
		}

		subscriptions, err := store.ListSubscriptions(r.Context(), id)
		if err != nil {
			respondError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.NewList(subscriptions))
	}
}
