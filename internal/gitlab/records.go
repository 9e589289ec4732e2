package gitlab

// Raw API records, field-for-field as the admin API returns them. Mapping
// into the canonical model happens in the monitor package.

type PersonalTokenRecord struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	UserID     int64    `json:"user_id"`
	Scopes     []string `json:"scopes"`
	Active     bool     `json:"active"`
	Revoked    bool     `json:"revoked"`
	CreatedAt  string   `json:"created_at"`
	LastUsedAt string   `json:"last_used_at"`
	ExpiresAt  string   `json:"expires_at"`
}

// ResourceTokenRecord is the shared shape of project and group access
// tokens; the two endpoints return identical fields.
type ResourceTokenRecord struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Scopes      []string `json:"scopes"`
	Active      bool     `json:"active"`
	Revoked     bool     `json:"revoked"`
	AccessLevel int      `json:"access_level"`
	CreatedAt   string   `json:"created_at"`
	ExpiresAt   string   `json:"expires_at"`
}

type Project struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
}

type Group struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullPath string `json:"full_path"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	State    string `json:"state"`
}

type VersionInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
}
