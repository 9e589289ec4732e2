package params

import "time"

const (
	// APIPerPage is the page size used for every paginated GitLab API call.
	APIPerPage = 100

	HTTPRequestTimeout = 30 * time.Second

	DefaultDaysThreshold = 7
	DefaultSMTPPort      = 465
)
