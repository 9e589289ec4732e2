package monitor

import (
	"time"

	"github.com/gitlab-tools/token-monitor/model"
)

// Classify buckets a token by its expiry date relative to now, at day
// granularity in UTC. The threshold boundary is inclusive: a token expiring
// in exactly thresholdDays days is ExpiringSoon. A token expiring today is
// not yet Expired.
func Classify(tok model.Token, now time.Time, thresholdDays int) model.Category {
	days, ok := tok.DaysUntil(now)
	if !ok {
		return model.CategoryPermanent
	}
	switch {
	case days < 0:
		return model.CategoryExpired
	case days <= thresholdDays:
		return model.CategoryExpiringSoon
	default:
		return model.CategoryHealthy
	}
}
