package youtube

import (
	"errors"
	"net/http"

	"github.com/creatordesk/channelsync/internal/domain"
	"google.golang.org/api/googleapi"
)

// classify wraps a raw API error into a *domain.ProviderError, marking
// rate-limit and credential rejections so the engine can label them.
// Timeouts and transport failures classify the same as any provider error:
// all of them trigger cache fallback.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	pe := &domain.ProviderError{Op: op, Err: err}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.Code
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			pe.RateLimited = true
		case http.StatusForbidden:
			pe.RateLimited = hasQuotaReason(apiErr)
		case http.StatusUnauthorized:
			pe.CredentialRejected = true
		}
	}

	return pe
}

func hasQuotaReason(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded", "dailyLimitExceeded":
			return true
		}
	}
	return false
}
