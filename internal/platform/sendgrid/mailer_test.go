package sendgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"to"`
	} `json:"personalizations"`
	From struct {
		Email string `json:"email"`
	} `json:"from"`
	Subject string `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func newTestMailer(t *testing.T, handler http.HandlerFunc) *Mailer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m, err := NewMailer(config.MailConfig{SendGridAPIKey: "SG.test-key", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	return m
}

func TestNewMailerRequiresKey(t *testing.T) {
	_, err := NewMailer(config.MailConfig{}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	m, err := NewMailer(config.MailConfig{SendGridAPIKey: "SG.key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultHost, m.host)
}

func TestMailer_Send(t *testing.T) {
	var got sentMail
	var auth, path, method string
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	})

	from := notify.Address{Name: "Task Manager", Email: "no-reply@example.com"}
	err := m.Send(context.Background(), notify.WelcomeMessage(from, "anna@gmail.com", "Ann"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer SG.test-key", auth)
	assert.Equal(t, mailSendEndpoint, path)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, notify.WelcomeSubject, got.Subject)
	assert.Equal(t, "no-reply@example.com", got.From.Email)
	require.Len(t, got.Personalizations, 1)
	require.Len(t, got.Personalizations[0].To, 1)
	assert.Equal(t, "anna@gmail.com", got.Personalizations[0].To[0].Email)
	require.Len(t, got.Content, 1)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "Welcome to the app, Ann!", got.Content[0].Value)
}

func TestMailer_SendHTML(t *testing.T) {
	var got sentMail
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	})

	msg := notify.CancelationMessage(notify.Address{Email: "no-reply@example.com"}, "anna@gmail.com", "Ann")
	require.NoError(t, m.Send(context.Background(), msg))

	require.Len(t, got.Content, 1)
	assert.Equal(t, "text/html", got.Content[0].Type)
	assert.Contains(t, got.Content[0].Value, "Goodbye, Ann!")
}

func TestMailer_SendProviderError(t *testing.T) {
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	})

	err := m.Send(context.Background(), notify.WelcomeMessage(notify.Address{Email: "x@example.com"}, "a@example.com", "A"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
