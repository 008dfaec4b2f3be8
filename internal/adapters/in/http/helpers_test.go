package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	kargohttp "kargo/internal/adapters/in/http"
	"kargo/internal/adapters/in/ws"
	"kargo/internal/adapters/out/postgres"
	"kargo/internal/adapters/out/postgres/storetest"
	"kargo/internal/adapters/out/realtime"
	"kargo/internal/core/application/usecases/commands"
	"kargo/internal/core/application/usecases/queries"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/domain/services"
	"kargo/internal/core/ports"
	"kargo/internal/pkg/auth"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const (
	secret       = "test-secret"
	storeTimeout = 3 * time.Second
	defaultFee   = 5000
)

type capturePublisher struct {
	mu     sync.Mutex
	events []order.StatusChanged
}

func (p *capturePublisher) Publish(_ context.Context, events ...order.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturePublisher) statuses(orderID kernel.UUID) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.OrderID.IsEqual(orderID) {
			out = append(out, e.To.String())
		}
	}
	return out
}

type orderUoWs struct{ f *postgres.GormUnitOfWorkFactory }

func (a orderUoWs) Create() commands.OrderUoW { return a.f.Create() }

type uows struct{ f *postgres.GormUnitOfWorkFactory }

func (a uows) Create() commands.UoW { return a.f.Create() }

type testAPI struct {
	t         *testing.T
	srv       *httptest.Server
	publisher *capturePublisher
	hub       *realtime.Hub
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAPI wires the full stack over an in-memory database.
func newAPI(t *testing.T, requireApproval bool) *testAPI {
	t.Helper()

	db := storetest.OpenSQLite(t)
	publisher := &capturePublisher{}
	factory := postgres.NewGormUnitOfWorkFactory(db, storeTimeout, publisher, discard())

	hub := realtime.NewHub(8, discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := kargohttp.NewServer(services.NewAccessPolicy(), kargohttp.Handlers{
		CreateOrder:     commands.NewCreateOrderCommandHandler(orderUoWs{factory}, defaultFee, time.Now),
		ClaimOrder:      commands.NewClaimOrderCommandHandler(orderUoWs{factory}, requireApproval, time.Now),
		AdvanceOrder:    commands.NewAdvanceOrderCommandHandler(orderUoWs{factory}, time.Now),
		ReviewOrder:     commands.NewReviewOrderCommandHandler(orderUoWs{factory}, time.Now),
		ReportLocation:  commands.NewReportLocationCommandHandler(uows{factory}, hub, time.Now, discard()),
		ListAvailable:   queries.NewListAvailableOrdersQueryHandler(db, storeTimeout, requireApproval),
		ListForActor:    queries.NewListOrdersForActorQueryHandler(db, storeTimeout),
		GetOrder:        queries.NewGetOrderQueryHandler(db, storeTimeout),
		CourierLocation: queries.NewGetCourierLocationQueryHandler(db, storeTimeout),
	})

	e, err := kargohttp.NewRouter(t.Context(), server, ws.NewHandler(hub, []string{"*"}, discard()).Serve,
		kargohttp.RouterConfig{JWTSecret: secret, Logger: discard()})
	require.NoError(t, err)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &testAPI{t: t, srv: srv, publisher: publisher, hub: hub}
}

type user struct {
	id    kernel.UUID
	role  kernel.Role
	token string
}

func (a *testAPI) user(role kernel.Role) user {
	a.t.Helper()
	id := kernel.NewUUID()
	token, err := auth.Sign(auth.Principal{UserID: id, Role: role}, secret, time.Hour, time.Now())
	require.NoError(a.t, err)
	return user{id: id, role: role, token: token}
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) order(t *testing.T) kargohttp.OrderResponse {
	t.Helper()
	var o kargohttp.OrderResponse
	require.NoError(t, json.Unmarshal(r.body, &o), string(r.body))
	return o
}

func (r response) orders(t *testing.T) []kargohttp.OrderResponse {
	t.Helper()
	var o []kargohttp.OrderResponse
	require.NoError(t, json.Unmarshal(r.body, &o), string(r.body))
	return o
}

func (r response) envelope(t *testing.T) kargohttp.Error {
	t.Helper()
	var e kargohttp.Error
	require.NoError(t, json.Unmarshal(r.body, &e), string(r.body))
	return e
}

func (a *testAPI) do(u *user, method, path string, body any) response {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(a.t.Context(), method, a.srv.URL+path, reader)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: data}
}

func newOrderBody(customer kernel.UUID) map[string]any {
	return map[string]any{
		"customer_id": customer.String(),
		"pickup":      map[string]any{"address": "Moda Cd. 12, Kadıköy", "phone": "+90 555 000 0001"},
		"delivery":    map[string]any{"address": "Barbaros Blv. 45, Beşiktaş", "phone": "+90 555 000 0002"},
		"package":     map[string]any{"description": "documents", "weight_kg": 0.5},
	}
}

func (a *testAPI) createOrder(business user, customer kernel.UUID) kargohttp.OrderResponse {
	a.t.Helper()
	resp := a.do(&business, http.MethodPost, "/api/v1/orders", newOrderBody(customer))
	require.Equal(a.t, http.StatusCreated, resp.status, string(resp.body))
	return resp.order(a.t)
}

func (a *testAPI) connect(u user) *websocket.Conn {
	a.t.Helper()
	url := "ws" + strings.TrimPrefix(a.srv.URL, "http") + "/api/v1/ws?token=" + u.token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(a.t, err)
	_ = resp.Body.Close()
	a.t.Cleanup(func() { _ = conn.Close() })

	// wait until the hub has the connection, then discard the warm-up push
	warmUp := ports.LocationUpdate{OrderID: kernel.NewUUID(), CourierID: kernel.NewUUID(), Timestamp: time.Now()}
	require.Eventually(a.t, func() bool {
		return a.hub.Push(context.Background(), u.id, warmUp) == nil
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(a.t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.NoError(a.t, err)

	return conn
}

// nextPush reads one location update, failing after wait.
func nextPush(t *testing.T, conn *websocket.Conn, wait time.Duration) (realtime.LocationUpdateMessage, error) {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return realtime.LocationUpdateMessage{}, err
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		return realtime.LocationUpdateMessage{}, err
	}
	var msg realtime.LocationUpdateMessage
	err = json.Unmarshal(data, &msg)
	return msg, err
}

func mustID(t *testing.T, s string) kernel.UUID {
	t.Helper()
	id, err := kernel.UUIDFromString(s)
	require.NoError(t, err)
	return id
}
