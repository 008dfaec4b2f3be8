package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kargo/internal/adapters/out/postgres/storetest"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() Config {
	return Config{
		DBDriver:             DriverSQLite,
		StoreTimeout:         3 * time.Second,
		JWTSecret:            "root-secret",
		EventsBroker:         BrokerLog,
		EventsQueueSize:      8,
		EventsPublishTimeout: time.Second,
		DefaultDeliveryFee:   5000,
		WSSendBuffer:         4,
	}
}

func TestCompositionRoot_ServesAPI(t *testing.T) {
	root, err := NewCompositionRoot(testConfig(), storetest.OpenSQLite(t), storetest.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	e, err := root.CreateRouter(t.Context())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := auth.Sign(auth.Principal{UserID: kernel.NewUUID(), Role: kernel.RoleBusiness},
		"root-secret", time.Hour, time.Now())
	require.NoError(t, err)

	body := `{"customer_id":"` + kernel.NewUUID().String() + `",
		"pickup":{"address":"Moda Cd. 12, Kadıköy","phone":"+90 555 000 0001"},
		"delivery":{"address":"Barbaros Blv. 45, Beşiktaş","phone":"+90 555 000 0002"},
		"package":{"description":"documents"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"delivery_fee":5000`)
}

type closeRecorder struct {
	name  string
	order *[]string
}

func (c closeRecorder) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

func TestCompositionRoot_CloseDrainsQueueBeforeBroker(t *testing.T) {
	root, err := NewCompositionRoot(testConfig(), storetest.OpenSQLite(t), storetest.DiscardLogger())
	require.NoError(t, err)

	var closed []string
	root.closers = append(root.closers,
		closeRecorder{name: "broker", order: &closed},
		closeRecorder{name: "queue", order: &closed},
	)

	require.NoError(t, root.Close())
	assert.Equal(t, []string{"queue", "broker"}, closed)
}

func TestCompositionRoot_JobsFollowMapsKey(t *testing.T) {
	db := storetest.OpenSQLite(t)

	root, err := NewCompositionRoot(testConfig(), db, storetest.DiscardLogger())
	require.NoError(t, err)
	jm, err := root.CreateJobManager()
	require.NoError(t, err)
	require.NoError(t, jm.StartAll())
	jm.StopAll()

	cfg := testConfig()
	cfg.GoogleMapsAPIKey = "AIzaSy-test-key"
	cfg.GeocodeSchedule = "@every 1h"
	root, err = NewCompositionRoot(cfg, db, storetest.DiscardLogger())
	require.NoError(t, err)
	jm, err = root.CreateJobManager()
	require.NoError(t, err)
	require.NoError(t, jm.StartAll())
	jm.StopAll()
}

func TestSeed_CreatesOrdersAndTokens(t *testing.T) {
	db := storetest.OpenSQLite(t)
	root, err := NewCompositionRoot(testConfig(), db, storetest.DiscardLogger())
	require.NoError(t, err)

	handler := root.CreateCreateOrderCommandHandler()
	var progress bytes.Buffer
	result, err := Seed(t.Context(), &handler, SeedOptions{
		Orders:    7,
		Customers: 2,
		Couriers:  2,
		TokenTTL:  time.Hour,
		Secret:    "root-secret",
	}, &progress)

	require.NoError(t, err)
	assert.Len(t, result.OrderIDs, 7)
	assert.Equal(t, int64(7), countOrders(t, db))

	roles := map[kernel.Role]int{}
	for _, id := range result.Identities {
		roles[id.Role]++
		p, err := auth.Parse(id.Token, "root-secret")
		require.NoError(t, err)
		assert.True(t, p.UserID.IsEqual(id.UserID))
	}
	assert.Equal(t, map[kernel.Role]int{
		kernel.RoleBusiness: 1,
		kernel.RoleCustomer: 2,
		kernel.RoleCourier:  2,
		kernel.RoleAdmin:    1,
	}, roles)

	var out bytes.Buffer
	require.NoError(t, PrintIdentities(&out, result.Identities))
	assert.Contains(t, out.String(), "ROLE")
	assert.Equal(t, 7, strings.Count(out.String(), "\n"))
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table("orders").Count(&n).Error)
	return n
}
