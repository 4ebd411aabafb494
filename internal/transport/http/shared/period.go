package shared

import (
	"net/http"
	"strings"

	"hrms/internal/domain/period"
	"hrms/internal/platform/apperr"
)

// ResolvePeriod reads ?period=YYYY-MM, falling back to the caller's stored
// selection and then the current month.
func ResolvePeriod(r *http.Request, resolver *period.Resolver, userID string) (period.Period, error) {
	explicit := strings.TrimSpace(r.URL.Query().Get("period"))
	p, err := resolver.Resolve(r.Context(), userID, explicit)
	if err != nil {
		if explicit != "" {
			return period.Period{}, apperr.Validation("invalid period", map[string]string{"period": "must be in YYYY-MM format"})
		}
		return period.Period{}, apperr.Remote("load selected period", err)
	}
	return p, nil
}
