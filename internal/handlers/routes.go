package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// APIPrefix is the URL prefix shared by every versioned endpoint.
const APIPrefix = "/api/v1"

// RegisterRoutes registers the redirect resource and the health
// check.
func RegisterRoutes(api huma.API, redirects *RedirectHandler, health *HealthHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "urls-list",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/urls",
		Summary:     "List redirect records",
		Description: "Returns every stored redirect record. Responses are cached for the configured TTL.",
		Tags:        []string{"URL"},
	}, redirects.ListURLs)

	huma.Register(api, huma.Operation{
		OperationID:   "urls-create",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/urls",
		Summary:       "Create a redirect record",
		Description:   "Stores a new target path. Paths are unique; storing an existing one is a conflict.",
		Tags:          []string{"URL"},
		DefaultStatus: http.StatusCreated,
	}, redirects.CreateURL)

	huma.Register(api, huma.Operation{
		OperationID: "urls-redirect",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/urls/{id}",
		Summary:     "Redirect to the stored path",
		Description: "Issues a temporary redirect to the path stored under the given id. Responses are cached for the configured TTL.",
		Tags:        []string{"URL"},
	}, redirects.RedirectByID)

	huma.Register(api, huma.Operation{
		OperationID:   "urls-delete",
		Method:        http.MethodDelete,
		Path:          APIPrefix + "/urls/{id}",
		Summary:       "Delete a redirect record",
		Tags:          []string{"URL"},
		DefaultStatus: http.StatusNoContent,
	}, redirects.DeleteURL)

	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, health.Check)
}
