package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"

	"github.com/gitlab-tools/token-monitor/internal/mail"
	"github.com/gitlab-tools/token-monitor/internal/monitor"
	"github.com/gitlab-tools/token-monitor/model"
)

// Reporter renders the HTML token report and hands it to the mail sender.
// It consumes a finished aggregate and the caller's send decision; it never
// re-derives either from raw data.
type Reporter struct {
	engine    *html.Engine
	sender    mail.MailSender
	to        []string
	gitlabURL string
}

func NewReporter(sender mail.MailSender, to []string, gitlabURL string, templateDir string) (*Reporter, error) {
	engine, err := NewHtmlEngine(templateDir)
	if err != nil {
		return nil, fmt.Errorf("loading report templates: %w", err)
	}
	return &Reporter{
		engine:    engine,
		sender:    sender,
		to:        to,
		gitlabURL: strings.TrimRight(gitlabURL, "/"),
	}, nil
}

type summaryStats struct {
	Total     int
	Expired   int
	Expiring  int
	Healthy   int
	Permanent int
}

type tokenTable struct {
	Kind    string
	Class   string
	Headers []string
	Rows    [][]string
}

type reportData struct {
	GitLabURL        string
	Summary          summaryStats
	ExpiredTables    []tokenTable
	ExpiringTables   []tokenTable
	HealthyTables    []tokenTable
	PermanentTables  []tokenTable
	Failures         []string
	SkippedMalformed int
}

// Subject follows the original notification wording: either a call to
// action with the problematic/total ratio, or an all-clear.
func (r *Reporter) Subject(agg *monitor.Aggregate) string {
	if n := agg.Problematic(); n > 0 {
		return fmt.Sprintf("GitLab Token Report - %d/%d tokens need attention", n, agg.Total())
	}
	return fmt.Sprintf("GitLab Token Report - All %d tokens are healthy", agg.Total())
}

func (r *Reporter) Send(agg *monitor.Aggregate, now time.Time) error {
	body, err := renderHTML(r.engine, "token_report", r.buildData(agg, now))
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	err = r.sender.Send(&mail.Message{
		To:      r.to,
		Subject: r.Subject(agg),
		Body:    body,
		IsHTML:  true,
	})
	if err != nil {
		return fmt.Errorf("sending report: %w", err)
	}
	return nil
}

func (r *Reporter) buildData(agg *monitor.Aggregate, now time.Time) reportData {
	data := reportData{
		GitLabURL: r.gitlabURL,
		Summary: summaryStats{
			Total:     agg.Total(),
			Expired:   agg.CategoryCount(model.CategoryExpired),
			Expiring:  agg.CategoryCount(model.CategoryExpiringSoon),
			Healthy:   agg.CategoryCount(model.CategoryHealthy),
			Permanent: agg.CategoryCount(model.CategoryPermanent),
		},
		ExpiredTables:    buildTables(agg, model.CategoryExpired, "expired", now),
		ExpiringTables:   buildTables(agg, model.CategoryExpiringSoon, "expiring", now),
		HealthyTables:    buildTables(agg, model.CategoryHealthy, "healthy", now),
		PermanentTables:  buildTables(agg, model.CategoryPermanent, "no-expiration", now),
		SkippedMalformed: agg.SkippedTotal(),
	}
	for _, failure := range agg.Failures {
		data.Failures = append(data.Failures,
			fmt.Sprintf("%s access tokens could not be checked: %v", failure.Kind.Title(), failure.Err))
	}
	return data
}

func buildTables(agg *monitor.Aggregate, cat model.Category, class string, now time.Time) []tokenTable {
	var tables []tokenTable
	for _, kind := range model.Kinds {
		tokens := agg.Tokens(kind, cat)
		if len(tokens) == 0 {
			continue
		}
		table := tokenTable{
			Kind:    kind.Title() + " Access Tokens",
			Class:   class,
			Headers: kindHeaders(kind),
		}
		for _, tok := range tokens {
			table.Rows = append(table.Rows, tokenRow(tok, cat, now))
		}
		tables = append(tables, table)
	}
	return tables
}

func kindHeaders(kind model.TokenKind) []string {
	switch kind {
	case model.KindPersonal:
		return []string{"Token Name", "User", "Email", "Expires At", "Status", "Days Until Expiry", "Scopes"}
	case model.KindProject:
		return []string{"Token Name", "Project", "Project Path", "Expires At", "Status", "Days Until Expiry", "Access Level"}
	case model.KindGroup:
		return []string{"Token Name", "Group", "Group Path", "Expires At", "Status", "Days Until Expiry", "Access Level", "Scopes"}
	}
	return nil
}

func tokenRow(tok model.Token, cat model.Category, now time.Time) []string {
	expiresAt, daysLeft := "Never", "Never"
	if tok.ExpiresAt != nil {
		expiresAt = tok.ExpiresAt.Format("2006-01-02")
		if days, ok := tok.DaysUntil(now); ok {
			daysLeft = strconv.Itoa(days)
		}
	}
	status := cat.String()
	scopes := strings.Join(tok.Scopes, ", ")

	switch tok.Kind {
	case model.KindPersonal:
		return []string{tok.Name, tok.Username, tok.UserEmail, expiresAt, status, daysLeft, scopes}
	case model.KindProject:
		return []string{tok.Name, tok.ProjectName, tok.ProjectPath, expiresAt, status, daysLeft, accessLevelName(tok.AccessLevel)}
	case model.KindGroup:
		return []string{tok.Name, tok.GroupName, tok.GroupPath, expiresAt, status, daysLeft, accessLevelName(tok.AccessLevel), scopes}
	}
	return nil
}

// accessLevelName maps GitLab numeric access levels to their display names.
func accessLevelName(level int) string {
	switch level {
	case 10:
		return "Guest"
	case 20:
		return "Reporter"
	case 30:
		return "Developer"
	case 40:
		return "Maintainer"
	case 50:
		return "Owner"
	}
	return strconv.Itoa(level)
}
