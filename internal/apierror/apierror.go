// Package apierror defines the JSON error envelope every non-2xx/3xx
// response carries and installs it as the framework's error model, so
// handler errors, schema validation failures, and recovered panics all
// share one shape.
package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// Envelope is the uniform error body:
// {"status": false, "error_code": <int>, "detail": <string or map>}.
type Envelope struct {
	Status    bool `json:"status"`
	ErrorCode int  `json:"error_code"`
	Detail    any  `json:"detail"`
}

// Error implements the error interface.
func (e *Envelope) Error() string {
	return fmt.Sprintf("%v", e.Detail)
}

// GetStatus implements huma.StatusError.
func (e *Envelope) GetStatus() int {
	return e.ErrorCode
}

// ContentType keeps error responses as plain application/json rather
// than problem+json, matching the success responses.
func (e *Envelope) ContentType(string) string {
	return "application/json"
}

// New builds an envelope for the given HTTP status and detail.
func New(status int, detail any) *Envelope {
	return &Envelope{
		Status:    false,
		ErrorCode: status,
		Detail:    detail,
	}
}

// Install replaces huma's error constructor with the envelope model.
// Logging happens here and nowhere else: callers raise typed errors,
// this boundary records them. Call once before registering routes.
func Install(logger *zap.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		detail := buildDetail(message, errs)

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.Int("status", status),
				zap.String("message", message),
				zap.Errors("errors", errs),
			)
			// Never leak internals to the caller.
			return New(status, http.StatusText(status))
		}

		logger.Warn("request rejected",
			zap.Int("status", status),
			zap.Any("detail", detail),
		)

		return New(status, detail)
	}
}

// buildDetail flattens validation sub-errors into a location→message
// map; plain errors keep the message string.
func buildDetail(message string, errs []error) any {
	if len(errs) == 0 {
		return message
	}

	fields := make(map[string]string, len(errs))

	for _, err := range errs {
		var detailer huma.ErrorDetailer
		if ok := asDetailer(err, &detailer); ok {
			d := detailer.ErrorDetail()
			fields[d.Location] = d.Message

			continue
		}

		fields["body"] = err.Error()
	}

	return fields
}

func asDetailer(err error, target *huma.ErrorDetailer) bool {
	d, ok := err.(huma.ErrorDetailer)
	if ok {
		*target = d
	}

	return ok
}

// WriteInternal writes a 500 envelope directly to a ResponseWriter.
// Used by the panic-recovery middleware, which runs outside the
// framework's error path.
func WriteInternal(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)

	_ = json.NewEncoder(w).Encode(New(
		http.StatusInternalServerError,
		http.StatusText(http.StatusInternalServerError),
	))
}
