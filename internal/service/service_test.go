package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/sharedpot/internal/api"
	"github.com/mmynk/sharedpot/internal/auth"
	"github.com/mmynk/sharedpot/internal/events"
	"github.com/mmynk/sharedpot/internal/ledger"
	"github.com/mmynk/sharedpot/internal/metrics"
	"github.com/mmynk/sharedpot/internal/middleware"
	"github.com/mmynk/sharedpot/internal/storage/sqlstore"
)

// recorder is an events.Publisher that keeps what it is given.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	url       string
	ledgers   *api.LedgerServiceClient
	auth      *api.AuthServiceClient
	published *recorder
}

// setupTestServer serves both services over a temp SQLite database with the
// production interceptor chain.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlstore.New(sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	m := metrics.New(prometheus.NewRegistry())
	published := &recorder{}

	common := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(
		NewAuthService(authenticator, store, jwtManager, logger),
		common, connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	))
	mux.Handle(api.NewLedgerServiceHandler(
		NewLedgerService(store, published, m, logger),
		common, connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		url:       server.URL,
		ledgers:   api.NewLedgerServiceClient(http.DefaultClient, server.URL),
		auth:      api.NewAuthServiceClient(http.DefaultClient, server.URL),
		published: published,
	}
}

// register creates an account and returns its bearer token.
func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:    email,
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return resp.Msg.Token
}

func authed[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func (e *testEnv) createLedger(t *testing.T, token, name string) string {
	t.Helper()
	resp, err := e.ledgers.CreateLedger(context.Background(), authed(token, &api.CreateLedgerRequest{Name: name}))
	if err != nil {
		t.Fatalf("CreateLedger failed: %v", err)
	}
	return resp.Msg.Ledger.ID
}

func persons(names ...string) ledger.Persons {
	ps, err := ledger.PersonsFromNames(names...)
	if err != nil {
		panic(err)
	}
	return ps
}

// addEvening records the restaurant and cinema outlays.
func (e *testEnv) addEvening(t *testing.T, token, ledgerID string) {
	t.Helper()
	ctx := context.Background()
	outlays := []*api.AddOutlayRequest{
		{
			LedgerID: ledgerID,
			Label:    "Restaurant le Grizzli",
			Date:     time.Date(2010, 3, 15, 20, 0, 0, 0, time.UTC),
			Items: []api.ItemInput{
				{Label: "Starter", Amount: "5.00", Participants: persons("Alice")},
				{Label: "Course", Amount: "20.00", Participants: persons("Alice")},
				{Label: "Course", Amount: "25.00", Participants: persons("Bob")},
				{Label: "Wine", Amount: "10", Participants: persons("Bob")},
			},
			Payments: []api.PaymentInput{{Amount: "60.00", Participants: persons("Alice")}},
		},
		{
			LedgerID: ledgerID,
			Label:    "Cinema",
			Date:     time.Date(2010, 3, 15, 22, 0, 0, 0, time.UTC),
			Items:    []api.ItemInput{{Label: "ticket", Amount: "20.00", Participants: persons("Alice", "Bob")}},
			Payments: []api.PaymentInput{{Amount: "20.00", Participants: persons("Bob")}},
		},
	}
	for _, o := range outlays {
		if _, err := e.ledgers.AddOutlay(ctx, authed(token, o)); err != nil {
			t.Fatalf("AddOutlay(%s) failed: %v", o.Label, err)
		}
	}
}

func (e *testEnv) debts(t *testing.T, token, ledgerID string) []api.Debt {
	t.Helper()
	resp, err := e.ledgers.GetDebts(context.Background(), authed(token, &api.GetDebtsRequest{LedgerID: ledgerID}))
	if err != nil {
		t.Fatalf("GetDebts failed: %v", err)
	}
	return resp.Msg.Debts
}

// postJSON sends a raw Connect unary request and returns the error code
// from the response body, or "" on success.
func postJSON(t *testing.T, env *testEnv, token, procedure, body string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, env.url+procedure, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", procedure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return ""
	}
	var errBody struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return errBody.Code
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("code = %v, want %v (err: %v)", got, want, err)
	}
}
