package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/mlazarev/redirector/internal/dao"
	"github.com/mlazarev/redirector/internal/entity"
)

// RedirectStore is the persistence contract the redirect resource
// consumes.
type RedirectStore interface {
	List(ctx context.Context) ([]*entity.RedirectURL, error)
	GetByID(ctx context.Context, id int64) (*entity.RedirectURL, error)
	Create(ctx context.Context, url string) (*entity.RedirectURL, error)
	DeleteByID(ctx context.Context, id int64) error
}

// RedirectHandler serves the redirect record lifecycle: list, create,
// redirect-by-id, delete-by-id.
type RedirectHandler struct {
	store  RedirectStore
	logger *zap.Logger
}

// NewRedirectHandler creates a redirect handler over the given store.
func NewRedirectHandler(store RedirectStore, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		store:  store,
		logger: logger,
	}
}

// ListURLs returns every stored record. Result order is store order;
// callers must not depend on it.
func (h *RedirectHandler) ListURLs(ctx context.Context, _ *struct{}) (*ListURLsResponse, error) {
	records, err := h.store.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list urls", err)
	}

	resp := &ListURLsResponse{Body: make([]URLView, 0, len(records))}
	for _, r := range records {
		resp.Body = append(resp.Body, URLView{ID: r.ID, URL: r.URL})
	}

	return resp, nil
}

// CreateURL stores a new redirect path. A path that already exists is
// a conflict, not an overwrite.
func (h *RedirectHandler) CreateURL(ctx context.Context, req *CreateURLRequest) (*CreateURLResponse, error) {
	record, err := h.store.Create(ctx, req.Body.URL)
	if err != nil {
		if errors.Is(err, dao.ErrConflict) {
			return nil, huma.Error422UnprocessableEntity("url_already_exists")
		}

		return nil, huma.Error500InternalServerError("failed to create url", err)
	}

	h.logger.Info("url created",
		zap.Int64("id", record.ID),
		zap.String("url", record.URL),
	)

	return &CreateURLResponse{Body: URLView{ID: record.ID, URL: record.URL}}, nil
}

// RedirectByID issues a temporary redirect to the stored path.
func (h *RedirectHandler) RedirectByID(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	record, err := h.store.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, huma.Error404NotFound("url_not_found")
		}

		return nil, huma.Error500InternalServerError("failed to get url", err)
	}

	return &RedirectResponse{
		Status:   http.StatusTemporaryRedirect,
		Location: record.URL,
	}, nil
}

// DeleteURL removes a record by id. Deleting an absent id reports not
// found, every time.
func (h *RedirectHandler) DeleteURL(ctx context.Context, req *RedirectRequest) (*DeleteURLResponse, error) {
	if err := h.store.DeleteByID(ctx, req.ID); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, huma.Error404NotFound("url_not_found")
		}

		return nil, huma.Error500InternalServerError("failed to delete url", err)
	}

	h.logger.Info("url deleted", zap.Int64("id", req.ID))

	return &DeleteURLResponse{}, nil
}
