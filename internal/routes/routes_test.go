package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Fluxo/config"
	"Fluxo/internal/domain/alert"
	"Fluxo/internal/domain/auth"
	"Fluxo/internal/domain/card"
	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/dashboard"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"
	"Fluxo/internal/domain/user"
	"Fluxo/internal/infrastructure"
	"Fluxo/internal/middleware"
	"Fluxo/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var today = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

type testServer struct {
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infrastructure.Migrate(db))

	transactor := infrastructure.NewGormTransactor(db)
	cardRepo := &infrastructure.CardRepository{DB: db}

	userSvc := user.NewService(&infrastructure.UserRepository{DB: db})
	userSvc.Cost = 4
	checker := shared.NewUserCheckerService(userSvc)
	categorySvc := category.NewService(&infrastructure.CategoryRepository{DB: db}, checker)
	transactionSvc := transaction.NewService(&infrastructure.TransactionRepository{DB: db}, categorySvc, cardRepo, transactor, checker)
	cardSvc := card.NewService(cardRepo, card.NewLabelDirectory(cardRepo, time.Minute), transactionSvc, categorySvc, transactor, checker)
	alertSvc := alert.NewService(transactionSvc, cardSvc, 7)
	alertSvc.Now = func() time.Time { return today }

	jwtSvc, err := middleware.NewJwtService(config.JWTConfig{Secret: "segredo", Issuer: "fluxo"}, userSvc)
	require.NoError(t, err)

	h := &routes.Handler{
		UserService:        userSvc,
		AuthService:        auth.NewService(userSvc, categorySvc, transactor),
		JwtService:         jwtSvc,
		TransactionService: transactionSvc,
		CategoryService:    categorySvc,
		CardService:        cardSvc,
		DashboardService:   dashboard.NewService(&infrastructure.DashboardRepository{DB: db}),
		AlertService:       alertSvc,
	}

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", h.Registration)
	api.POST("/auth/login", h.Authenticate)

	private := r.Group("/api")
	private.Use(middleware.AuthMiddleware(jwtSvc))
	private.GET("/categories", h.ListCategories)
	private.POST("/transactions", h.CreateTransaction)
	private.GET("/transactions", h.ListTransactions)
	private.GET("/alerts", h.ListAlerts)
	private.POST("/alerts/mark-paid", h.MarkAlertPaid)
	private.GET("/dashboard/balance", h.GetBalance)

	return &testServer{router: r}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *testServer) register(t *testing.T) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "Senha@123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.token = decode(t, w)["token"].(string)
}

func (s *testServer) firstCategoryID(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodGet, "/api/categories?limit=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, len(category.DefaultCategories))
	return data[0].(map[string]interface{})["id"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t)

	dup := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "Senha@123",
	})
	assert.Equal(t, http.StatusConflict, dup.Code)

	s.token = ""
	wrong := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ana@example.com",
		"password": "Errada@123",
	})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)

	ok := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ana@example.com",
		"password": "Senha@123",
	})
	require.Equal(t, http.StatusOK, ok.Code)
	assert.NotEmpty(t, decode(t, ok)["token"])
}

func TestRegisterValidatesBody(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"email": "nao-e-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/transactions", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransactionTypeMustMatchSign(t *testing.T) {
	s := newTestServer(t)
	s.register(t)
	categoryID := s.firstCategoryID(t)

	w := s.do(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"date":        today.Format("2006-01-02"),
		"description": "Mercado",
		"value":       -50,
		"type":        "INCOME",
		"category_id": categoryID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestPendingTransactionShowsUpInAlertsUntilPaid(t *testing.T) {
	s := newTestServer(t)
	s.register(t)
	categoryID := s.firstCategoryID(t)

	created := s.do(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"date":        today.AddDate(0, 0, 2).Format("2006-01-02"),
		"description": "Conta de luz",
		"value":       "-120.50",
		"category_id": categoryID,
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	tx := decode(t, created)
	assert.Equal(t, "EXPENSE", tx["type"])
	assert.Equal(t, "PENDING", tx["status"])
	assert.Equal(t, "PERSONAL", tx["context"])

	list := s.do(t, http.MethodGet, "/api/transactions?status=PENDING", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.EqualValues(t, 1, decode(t, list)["total"])

	alerts := s.do(t, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, alerts.Code)
	items := decode(t, alerts)["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "TRANSACTION", item["sourceType"])
	assert.Equal(t, false, item["overdue"])

	paid := s.do(t, http.MethodPost, "/api/alerts/mark-paid", map[string]string{
		"source_type": "TRANSACTION",
		"source_id":   tx["id"].(string),
	})
	require.Equal(t, http.StatusOK, paid.Code, paid.Body.String())

	again := s.do(t, http.MethodPost, "/api/alerts/mark-paid", map[string]string{
		"source_type": "TRANSACTION",
		"source_id":   tx["id"].(string),
	})
	assert.Equal(t, http.StatusConflict, again.Code)

	alerts = s.do(t, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, alerts.Code)
	assert.EqualValues(t, 0, decode(t, alerts)["total"])
}

func TestBalanceRejectsHalfOpenPeriod(t *testing.T) {
	s := newTestServer(t)
	s.register(t)

	w := s.do(t, http.MethodGet, "/api/dashboard/balance?from=2026-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/dashboard/balance?from=2026-03-01&to=2026-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", decode(t, w)["balance"])
}
