package interfaces

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/yair/localgeo/pkg/domain"
)

const maxBodyBytes = 1 << 20

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithDomainError maps err onto a status and the message shown to the user.
func respondWithDomainError(w http.ResponseWriter, err error, fallback string) {
	code := statusFor(err)
	message := domain.UserMessage(err, fallback)
	if code == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondWithError(w, code, message)
}

func statusFor(err error) int {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrStaleResult):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.As(err, &apiErr), errors.Is(err, domain.ErrNetworkFailure), errors.Is(err, domain.ErrDecodeFailure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.ValidationError{Field: "body", Message: "unreadable request body"}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return domain.ValidationError{Field: "body", Message: "invalid JSON body"}
	}
	return nil
}
