package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"taskflow/internal/sqlinline"
)

type stubExecutor struct {
	token string
	props []byte
	err   error
	exec  struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return stubRow{token: s.token, props: s.props, err: s.err}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	token string
	props []byte
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != 2 {
		return errors.New("expected token and properties")
	}
	tok, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid token dest")
	}
	props, ok := dest[1].(*[]byte)
	if !ok {
		return errors.New("invalid properties dest")
	}
	*tok = r.token
	*props = r.props
	return nil
}

func TestNotifyWebhook(t *testing.T) {
	store := NewStore(&stubExecutor{token: " s3cret ", props: []byte(`{"url":"https://hooks.example.com/taskflow"}`)})
	hook, err := store.NotifyWebhook(context.Background())
	if err != nil {
		t.Fatalf("NotifyWebhook error: %v", err)
	}
	if hook.URL != "https://hooks.example.com/taskflow" || hook.Secret != "s3cret" || !hook.Configured() {
		t.Fatalf("unexpected webhook %+v", hook)
	}
}

func TestNotifyWebhook_NoRows(t *testing.T) {
	store := NewStore(&stubExecutor{err: pgx.ErrNoRows})
	hook, err := store.NotifyWebhook(context.Background())
	if err != nil {
		t.Fatalf("NotifyWebhook error: %v", err)
	}
	if hook.Configured() {
		t.Fatalf("expected empty webhook, got %+v", hook)
	}
}

func TestNotifyWebhook_BadProperties(t *testing.T) {
	store := NewStore(&stubExecutor{token: "x", props: []byte(`{`)})
	if _, err := store.NotifyWebhook(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSetNotifyWebhook(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.SetNotifyWebhook(context.Background(), " https://hooks.example.com/x ", " secret "); err != nil {
		t.Fatalf("SetNotifyWebhook error: %v", err)
	}
	if exec.exec.query != sqlinline.QUpsertIntegrationToken {
		t.Fatalf("unexpected query %q", exec.exec.query)
	}
	if len(exec.exec.args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(exec.exec.args))
	}
	if v, ok := exec.exec.args[1].(string); !ok || v != "secret" {
		t.Fatalf("expected secret argument, got %T %v", exec.exec.args[1], exec.exec.args[1])
	}
	if raw, ok := exec.exec.args[2].([]byte); !ok || string(raw) != `{"url":"https://hooks.example.com/x"}` {
		t.Fatalf("unexpected properties %T %v", exec.exec.args[2], exec.exec.args[2])
	}
}

func TestSetNotifyWebhookRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", " ", "ftp://example.com", "not a url", "https://"} {
		store := NewStore(&stubExecutor{})
		if err := store.SetNotifyWebhook(context.Background(), raw, ""); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestClearNotifyWebhook(t *testing.T) {
	exec := &stubExecutor{}
	if err := NewStore(exec).ClearNotifyWebhook(context.Background()); err != nil {
		t.Fatalf("ClearNotifyWebhook error: %v", err)
	}
	if exec.exec.query != sqlinline.QDeleteIntegrationToken || exec.exec.args[0] != ProviderNotifyWebhook {
		t.Fatalf("unexpected exec %+v", exec.exec)
	}
}
