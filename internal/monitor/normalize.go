package monitor

import (
	"fmt"
	"time"

	"github.com/gitlab-tools/token-monitor/internal/gitlab"
	"github.com/gitlab-tools/token-monitor/model"
)

// The normalizers are pure mappings from one raw API record to one
// kind-complete model.Token. A missing required field yields a
// *MappingError, never a partially populated token.

const expiryDateLayout = "2006-01-02"

func parseExpiry(kind model.TokenKind, name string, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	// GitLab returns expires_at as a bare date; tolerate full timestamps
	// and keep only the calendar date.
	t, err := time.Parse(expiryDateLayout, value)
	if err != nil {
		if ts, tsErr := time.Parse(time.RFC3339, value); tsErr == nil {
			t = ts
		} else {
			return nil, &MappingError{Kind: kind, Name: name, Reason: fmt.Sprintf("unparseable expires_at %q", value)}
		}
	}
	date := model.DateOnly(t)
	return &date, nil
}

// NormalizePersonal maps a personal access token record. owner is the
// best-effort result of the user lookup and may be nil; the required field
// is the record's user_id itself.
func NormalizePersonal(rec gitlab.PersonalTokenRecord, owner *gitlab.User) (model.Token, error) {
	if rec.ID == 0 {
		return model.Token{}, &MappingError{Kind: model.KindPersonal, Name: rec.Name, Reason: "missing id"}
	}
	if rec.Name == "" {
		return model.Token{}, &MappingError{Kind: model.KindPersonal, Name: rec.Name, Reason: "missing name"}
	}
	if rec.UserID == 0 {
		return model.Token{}, &MappingError{Kind: model.KindPersonal, Name: rec.Name, Reason: "missing user_id"}
	}
	expiresAt, err := parseExpiry(model.KindPersonal, rec.Name, rec.ExpiresAt)
	if err != nil {
		return model.Token{}, err
	}

	username, email := "unknown", "unknown"
	if owner != nil {
		username, email = owner.Username, owner.Email
	}
	return model.Token{
		ID:        rec.ID,
		Kind:      model.KindPersonal,
		Name:      rec.Name,
		Scopes:    rec.Scopes,
		ExpiresAt: expiresAt,
		Username:  username,
		UserEmail: email,
	}, nil
}

func NormalizeProject(rec gitlab.ResourceTokenRecord, project gitlab.Project) (model.Token, error) {
	if rec.ID == 0 {
		return model.Token{}, &MappingError{Kind: model.KindProject, Name: rec.Name, Reason: "missing id"}
	}
	if rec.Name == "" {
		return model.Token{}, &MappingError{Kind: model.KindProject, Name: rec.Name, Reason: "missing name"}
	}
	if project.ID == 0 || project.Name == "" {
		return model.Token{}, &MappingError{Kind: model.KindProject, Name: rec.Name, Reason: "missing project identity"}
	}
	expiresAt, err := parseExpiry(model.KindProject, rec.Name, rec.ExpiresAt)
	if err != nil {
		return model.Token{}, err
	}

	projectPath := project.PathWithNamespace
	if projectPath == "" {
		projectPath = project.Name
	}
	return model.Token{
		ID:          rec.ID,
		Kind:        model.KindProject,
		Name:        rec.Name,
		Scopes:      rec.Scopes,
		ExpiresAt:   expiresAt,
		ProjectName: project.Name,
		ProjectPath: projectPath,
		AccessLevel: rec.AccessLevel,
	}, nil
}

func NormalizeGroup(rec gitlab.ResourceTokenRecord, group gitlab.Group) (model.Token, error) {
	if rec.ID == 0 {
		return model.Token{}, &MappingError{Kind: model.KindGroup, Name: rec.Name, Reason: "missing id"}
	}
	if rec.Name == "" {
		return model.Token{}, &MappingError{Kind: model.KindGroup, Name: rec.Name, Reason: "missing name"}
	}
	if group.ID == 0 || group.Name == "" {
		return model.Token{}, &MappingError{Kind: model.KindGroup, Name: rec.Name, Reason: "missing group identity"}
	}
	expiresAt, err := parseExpiry(model.KindGroup, rec.Name, rec.ExpiresAt)
	if err != nil {
		return model.Token{}, err
	}

	groupPath := group.FullPath
	if groupPath == "" {
		groupPath = group.Name
	}
	return model.Token{
		ID:          rec.ID,
		Kind:        model.KindGroup,
		Name:        rec.Name,
		Scopes:      rec.Scopes,
		ExpiresAt:   expiresAt,
		GroupName:   group.Name,
		GroupPath:   groupPath,
		AccessLevel: rec.AccessLevel,
	}, nil
}
