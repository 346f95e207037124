package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/OmkarVetal12/synlawn/api/controllers"
	"github.com/OmkarVetal12/synlawn/internal/productitems"
	"github.com/OmkarVetal12/synlawn/internal/quotes"
	"github.com/OmkarVetal12/synlawn/internal/workflow"
	"github.com/OmkarVetal12/synlawn/pkg/config"
	"github.com/OmkarVetal12/synlawn/pkg/db"
	"github.com/OmkarVetal12/synlawn/pkg/db/models"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
	"github.com/OmkarVetal12/synlawn/pkg/metrics"
	"github.com/OmkarVetal12/synlawn/pkg/outbox"
)

type memoryIdempotency struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryIdempotency) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotency) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryIdempotency) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryIdempotency) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:%s:%s", scope, id)
}

type yard struct {
	conn  *gorm.DB
	h     http.Handler
	quote models.Quote
	line  models.QuoteLineItem
	order models.WorkOrder
	north models.ProductItem
}

func newYard(t *testing.T) *yard {
	t.Helper()
	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	y := &yard{conn: conn}
	product := uuid.New()
	y.quote = models.Quote{QuoteNumber: "Q-900", Name: "Park refresh"}
	require.NoError(t, conn.Create(&y.quote).Error)
	y.line = models.QuoteLineItem{QuoteID: y.quote.ID, ProductID: product, ProductName: "Fescue Seed", ProductOption: enums.ProductOptionIncluded, Quantity: decimal.NewFromInt(6), ListPrice: decimal.NewFromInt(40), SortOrder: 1}
	require.NoError(t, conn.Create(&y.line).Error)
	y.north = models.ProductItem{ProductID: product, ProductName: "Fescue Seed", LocationID: uuid.New(), LocationName: "North Yard", QuantityOnHand: decimal.NewFromInt(10)}
	require.NoError(t, conn.Create(&y.north).Error)
	qid := y.quote.ID
	y.order = models.WorkOrder{Number: "WO-900", QuoteID: &qid}
	require.NoError(t, conn.Create(&y.order).Error)

	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	dbClient := db.NewFromConn(conn)
	publisher := outbox.NewService(outbox.NewRepository(conn), logg)
	items, err := productitems.NewService(dbClient, productitems.NewRepository(conn), publisher, logg)
	require.NoError(t, err)
	quoteSvc, err := quotes.NewService(dbClient, quotes.NewRepository(conn), items, publisher, logg)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	registry := workflow.NewRegistry(workflow.RegistryConfig{
		Collaborators: map[enums.WorkflowMode]workflow.Collaborators{
			enums.WorkflowModeHold:    {Demand: quoteSvc.HoldSource(), Inventory: items.HoldChecker(), Hold: items},
			enums.WorkflowModeConsume: {Demand: quoteSvc.ConsumeSource(), Inventory: items.ConsumeChecker(), Consume: items},
		},
		Logger:  logg,
		Metrics: metrics.NewWorkflowMetrics(reg),
	})

	y.h = NewRouter(Deps{
		Config:       &config.Config{App: config.AppConfig{Env: "dev"}},
		Logger:       logg,
		DB:           controllers.Dependency{Name: "database", Pinger: dbClient},
		Idempotency:  &memoryIdempotency{data: map[string]string{}},
		Workflows:    registry,
		Quotes:       quoteSvc,
		Consumptions: items,
		Gatherer:     reg,
	})
	return y
}

func (y *yard) call(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp := httptest.NewRecorder()
	y.h.ServeHTTP(resp, req)
	return resp
}

func (y *yard) reload(t *testing.T) models.ProductItem {
	t.Helper()
	var item models.ProductItem
	require.NoError(t, y.conn.First(&item, "id = ?", y.north.ID).Error)
	return item
}

func data(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

// runWorkflow drives a workflow to VALIDATE with the one demand line selected
// and proposes qty on the north yard row.
func (y *yard) runWorkflow(t *testing.T, mode, parentID, qty string) string {
	t.Helper()
	resp := y.call(t, http.MethodPost, "/api/v1/workflows", `{"mode":"`+mode+`","parent_id":"`+parentID+`"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var state workflow.State
	data(t, resp, &state)
	require.Len(t, state.DemandLines, 1)
	base := "/api/v1/workflows/" + state.ID

	resp = y.call(t, http.MethodPost, base+"/selection", `{"demand_line_id":"`+y.line.ID.String()+`","selected":true}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = y.call(t, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = y.call(t, http.MethodPut, base+"/rows/"+y.north.ID.String(), `{"quantity":"`+qty+`"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return base
}

func TestHealthAndMetrics(t *testing.T) {
	y := newYard(t)

	require.Equal(t, http.StatusOK, y.call(t, http.MethodGet, "/health/live", "").Code)
	require.Equal(t, http.StatusOK, y.call(t, http.MethodGet, "/health/ready", "").Code)

	y.runWorkflow(t, "hold", y.quote.ID.String(), "1")
	resp := y.call(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "workflow_active 1")
	require.Contains(t, resp.Body.String(), "workflow_remote_call_duration_seconds")
}

func TestHoldThenConsumeOverHTTP(t *testing.T) {
	y := newYard(t)

	base := y.runWorkflow(t, "hold", y.quote.ID.String(), "4")
	resp := y.call(t, http.MethodPost, base+"/confirm", "", "Idempotency-Key", "hold-1")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := resp.Body.String()

	item := y.reload(t)
	require.True(t, item.QuantityOnHold.Equal(decimal.NewFromInt(4)))

	replay := y.call(t, http.MethodPost, base+"/confirm", "", "Idempotency-Key", "hold-1")
	require.Equal(t, http.StatusOK, replay.Code)
	require.Equal(t, first, replay.Body.String())
	require.True(t, y.reload(t).QuantityOnHold.Equal(decimal.NewFromInt(4)))

	again := y.call(t, http.MethodPost, base+"/confirm", "")
	require.Equal(t, http.StatusUnprocessableEntity, again.Code)

	base = y.runWorkflow(t, "consume", y.order.ID.String(), "9")
	resp = y.call(t, http.MethodGet, base+"/rows?product=fescue", "")
	var rows []struct {
		ProductItemID     string          `json:"product_item_id"`
		QuantityAvailable decimal.Decimal `json:"quantity_available"`
		ProposedQuantity  decimal.Decimal `json:"proposed_quantity"`
	}
	data(t, resp, &rows)
	require.Len(t, rows, 1)
	require.True(t, rows[0].QuantityAvailable.Equal(decimal.NewFromInt(4)), "consume ceiling is the held quantity")
	require.True(t, rows[0].ProposedQuantity.Equal(decimal.NewFromInt(4)))

	resp = y.call(t, http.MethodPost, base+"/confirm", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	item = y.reload(t)
	require.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(6)))
	require.True(t, item.QuantityOnHold.IsZero())

	var events int64
	require.NoError(t, y.conn.Model(&models.OutboxEvent{}).Count(&events).Error)
	require.EqualValues(t, 2, events)
}

func TestQuoteOptionsAndConsumptionRoutes(t *testing.T) {
	y := newYard(t)

	resp := y.call(t, http.MethodGet, "/api/v1/quotes/"+y.quote.ID.String()+"/options", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var families []quotes.OptionFamily
	data(t, resp, &families)
	require.Len(t, families, 1)

	resp = y.call(t, http.MethodPut, "/api/v1/quotes/"+y.quote.ID.String()+"/options", `{"choices":[]}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = y.call(t, http.MethodPost, "/api/v1/work-orders/"+y.order.ID.String()+"/consumptions",
		`{"entries":[{"product_item_id":"`+y.north.ID.String()+`","quantity":"2","status":"Utilized"}]}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var consumed []models.ProductConsumed
	require.NoError(t, y.conn.Where("work_order_id = ?", y.order.ID).Find(&consumed).Error)
	require.Len(t, consumed, 1)
	require.True(t, consumed[0].QuantityConsumed.Equal(decimal.NewFromInt(2)))
}

func TestUnknownWorkflowIsNotFound(t *testing.T) {
	y := newYard(t)

	resp := y.call(t, http.MethodGet, "/api/v1/workflows/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}
