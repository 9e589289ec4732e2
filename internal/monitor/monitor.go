package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitlab-tools/token-monitor/config"
	"github.com/gitlab-tools/token-monitor/internal/gitlab"
	"github.com/gitlab-tools/token-monitor/model"
)

// Monitor runs one stateless collection pass: fetch every enabled token
// kind, normalize, classify, aggregate. A kind-level fetch failure is
// recorded and does not abort the other kinds.
type Monitor struct {
	client *gitlab.Client
	cfg    config.MonitorConfig
}

func New(client *gitlab.Client, cfg config.MonitorConfig) *Monitor {
	return &Monitor{
		client: client,
		cfg:    cfg,
	}
}

// EnabledKinds returns the kinds this run will fetch, honoring the
// per-kind include flags.
func (m *Monitor) EnabledKinds() []model.TokenKind {
	kinds := []model.TokenKind{model.KindPersonal}
	if m.cfg.IncludeProjectTokens {
		kinds = append(kinds, model.KindProject)
	}
	if m.cfg.IncludeGroupTokens {
		kinds = append(kinds, model.KindGroup)
	}
	return kinds
}

type kindResult struct {
	kind    model.TokenKind
	tokens  []model.Token
	skipped int
	err     error
}

// Run fetches the enabled kinds concurrently; the fetches share no mutable
// state and each writes only its own result slot. Classification and
// aggregation happen single-threaded afterwards, through the one
// Aggregate.Add path.
func (m *Monitor) Run(ctx context.Context, now time.Time) *Aggregate {
	kinds := m.EnabledKinds()
	results := make([]kindResult, len(kinds))

	grp, grpCtx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		grp.Go(func() error {
			results[i] = m.fetchKind(grpCtx, kind)
			return nil
		})
	}
	_ = grp.Wait()

	agg := NewAggregate()
	for _, res := range results {
		if res.err != nil {
			slog.Error("Token kind could not be checked.", "kind", res.kind, "error", res.err)
			agg.RecordFailure(res.kind, res.err)
			continue
		}
		for n := 0; n < res.skipped; n++ {
			agg.RecordSkip(res.kind)
		}
		for _, tok := range res.tokens {
			agg.Add(tok, Classify(tok, now, m.cfg.DaysThreshold))
		}
		slog.Info("Token kind checked.",
			"kind", res.kind,
			"total", agg.KindTotal(res.kind),
			"expired", agg.Count(res.kind, model.CategoryExpired),
			"expiringSoon", agg.Count(res.kind, model.CategoryExpiringSoon),
			"healthy", agg.Count(res.kind, model.CategoryHealthy),
			"permanent", agg.Count(res.kind, model.CategoryPermanent),
			"skippedMalformed", res.skipped,
		)
	}
	return agg
}

func (m *Monitor) fetchKind(ctx context.Context, kind model.TokenKind) kindResult {
	res := kindResult{kind: kind}
	switch kind {
	case model.KindPersonal:
		res.tokens, res.skipped, res.err = m.fetchPersonal(ctx)
	case model.KindProject:
		res.tokens, res.skipped, res.err = m.fetchProject(ctx)
	case model.KindGroup:
		res.tokens, res.skipped, res.err = m.fetchGroup(ctx)
	default:
		panic("unknown token kind " + string(kind))
	}
	return res
}

func (m *Monitor) fetchPersonal(ctx context.Context) ([]model.Token, int, error) {
	recs, err := m.client.PersonalAccessTokens(ctx)
	if err != nil {
		return nil, 0, err
	}

	// Owner lookups are best-effort display enrichment, memoized per run.
	userCache := make(map[int64]*gitlab.User)
	lookupUser := func(userID int64) *gitlab.User {
		if user, ok := userCache[userID]; ok {
			return user
		}
		user, err := m.client.User(ctx, userID)
		if err != nil {
			slog.Warn("Could not resolve token owner.", "userID", userID, "error", err)
			user = nil
		}
		userCache[userID] = user
		return user
	}

	var tokens []model.Token
	var skipped int
	for _, rec := range recs {
		if rec.Revoked || !rec.Active {
			continue
		}
		var owner *gitlab.User
		if rec.UserID != 0 {
			owner = lookupUser(rec.UserID)
		}
		tok, err := NormalizePersonal(rec, owner)
		if err != nil {
			logMappingError(err)
			skipped++
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, skipped, nil
}

func (m *Monitor) fetchProject(ctx context.Context) ([]model.Token, int, error) {
	projects, err := m.client.Projects(ctx)
	if err != nil {
		return nil, 0, err
	}

	var tokens []model.Token
	var skipped int
	for _, project := range projects {
		recs, err := m.client.ProjectAccessTokens(ctx, project.ID)
		if err != nil {
			return nil, 0, err
		}
		for _, rec := range recs {
			if rec.Revoked || !rec.Active {
				continue
			}
			tok, err := NormalizeProject(rec, project)
			if err != nil {
				logMappingError(err)
				skipped++
				continue
			}
			tokens = append(tokens, tok)
		}
	}
	return tokens, skipped, nil
}

func (m *Monitor) fetchGroup(ctx context.Context) ([]model.Token, int, error) {
	groups, err := m.client.Groups(ctx)
	if err != nil {
		return nil, 0, err
	}

	var tokens []model.Token
	var skipped int
	for _, group := range groups {
		recs, err := m.client.GroupAccessTokens(ctx, group.ID)
		if err != nil {
			return nil, 0, err
		}
		for _, rec := range recs {
			if rec.Revoked || !rec.Active {
				continue
			}
			tok, err := NormalizeGroup(rec, group)
			if err != nil {
				logMappingError(err)
				skipped++
				continue
			}
			tokens = append(tokens, tok)
		}
	}
	return tokens, skipped, nil
}

func logMappingError(err error) {
	var mapErr *MappingError
	if errors.As(err, &mapErr) {
		slog.Warn("Skipping malformed token record.", "kind", mapErr.Kind, "name", mapErr.Name, "reason", mapErr.Reason)
		return
	}
	slog.Warn("Skipping malformed token record.", "error", err)
}
