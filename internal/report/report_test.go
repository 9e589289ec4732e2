package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitlab-tools/token-monitor/internal/mail"
	"github.com/gitlab-tools/token-monitor/internal/monitor"
	"github.com/gitlab-tools/token-monitor/model"
)

type captureSender struct {
	sent []*mail.Message
	err  error
}

func (s *captureSender) Send(message *mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, message)
	return nil
}

func testDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func testAggregate(t *testing.T, now time.Time) *monitor.Aggregate {
	t.Helper()
	expired := testDate(t, "2024-01-05")
	expiring := testDate(t, "2024-01-14")
	healthy := testDate(t, "2024-06-01")

	agg := monitor.NewAggregate()
	tokens := []model.Token{
		{ID: 1, Kind: model.KindPersonal, Name: "alice-api", Username: "alice", UserEmail: "alice@example.com",
			Scopes: []string{"api"}, ExpiresAt: &expired},
		{ID: 2, Kind: model.KindProject, Name: "deploy", ProjectName: "widgets", ProjectPath: "acme/widgets",
			AccessLevel: 40, ExpiresAt: &expiring},
		{ID: 3, Kind: model.KindGroup, Name: "group-bot", GroupName: "platform", GroupPath: "acme/platform",
			AccessLevel: 50, Scopes: []string{"api"}, ExpiresAt: &healthy},
		{ID: 4, Kind: model.KindPersonal, Name: "bob-forever", Username: "bob", UserEmail: "bob@example.com"},
	}
	for _, tok := range tokens {
		agg.Add(tok, monitor.Classify(tok, now, 7))
	}
	return agg
}

func TestSubject(t *testing.T) {
	now := testDate(t, "2024-01-10")
	sender := &captureSender{}
	reporter, err := NewReporter(sender, []string{"admin@example.com"}, "https://gitlab.example.com", "")
	require.NoError(t, err)

	agg := testAggregate(t, now)
	assert.Equal(t, "GitLab Token Report - 2/4 tokens need attention", reporter.Subject(agg))

	allClear := monitor.NewAggregate()
	healthy := testDate(t, "2024-06-01")
	tok := model.Token{ID: 1, Kind: model.KindPersonal, Name: "ok", Username: "alice", UserEmail: "a@example.com", ExpiresAt: &healthy}
	allClear.Add(tok, monitor.Classify(tok, now, 7))
	assert.Equal(t, "GitLab Token Report - All 1 tokens are healthy", reporter.Subject(allClear))
}

func TestSendRendersReport(t *testing.T) {
	now := testDate(t, "2024-01-10")
	sender := &captureSender{}
	reporter, err := NewReporter(sender, []string{"admin@example.com", "ops@example.com"}, "https://gitlab.example.com/", "")
	require.NoError(t, err)

	agg := testAggregate(t, now)
	agg.RecordFailure(model.KindGroup, errors.New("authentication failed (status 401)"))

	require.NoError(t, reporter.Send(agg, now))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"admin@example.com", "ops@example.com"}, msg.To)
	assert.True(t, msg.IsHTML)
	assert.Contains(t, msg.Subject, "need attention")

	body := msg.Body
	assert.Contains(t, body, "alice-api")
	assert.Contains(t, body, "alice@example.com")
	assert.Contains(t, body, "acme/widgets")
	assert.Contains(t, body, "Maintainer")
	assert.Contains(t, body, "Tokens Requiring Immediate Attention")
	assert.Contains(t, body, "Tokens with No Expiration")
	assert.Contains(t, body, "Group access tokens could not be checked")
	// links target the instance without a double slash
	assert.Contains(t, body, "https://gitlab.example.com/-/user_settings/personal_access_tokens")
	// days-until-expiry column
	assert.Contains(t, body, "<td>-5</td>")
	assert.Contains(t, body, "<td>Never</td>")
}

func TestSendWrapsSenderError(t *testing.T) {
	now := testDate(t, "2024-01-10")
	sendErr := errors.New("smtp refused")
	reporter, err := NewReporter(&captureSender{err: sendErr}, []string{"admin@example.com"}, "https://gitlab.example.com", "")
	require.NoError(t, err)

	err = reporter.Send(testAggregate(t, now), now)
	require.Error(t, err)
	assert.ErrorIs(t, err, sendErr)
	assert.Contains(t, err.Error(), "sending report")
}
