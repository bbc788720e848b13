package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/api"
	"github.com/linesmerrill/ai-court-api/config"
	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/debate"
	"github.com/linesmerrill/ai-court-api/genai"
	"github.com/linesmerrill/ai-court-api/models"
	"github.com/linesmerrill/ai-court-api/verdict"
	"github.com/linesmerrill/ai-court-api/workflow"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

// App stores the router and the store connection, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config

	// Judge and Generator default to http clients built from Config
	Judge     verdict.Judge
	Generator genai.Generator

	store    databases.KeyValueStore
	notifier databases.Notifier
	engine   *debate.Engine
	closers  []func(context.Context) error
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	udb := databases.NewUserDatabase(a.store)
	cdb := databases.NewCaseDatabase(a.store)

	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: udb}
	m.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)

	acc := Account{UDB: udb, CDB: cdb}
	c := Case{DB: cdb, Workflow: workflow.NewCaseWorkflow(a.Judge, cdb)}
	j := Judge{Client: a.Judge, URL: a.Config.VerdictAPIURL}
	d := Debate{Engine: a.engine, PollInterval: a.Config.DebatePollInterval}
	gv := GenerateVerdict{Generator: a.Generator}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/api/generate-verdict", gv.GenerateVerdictHandler).Methods("POST")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(m.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/account", api.Middleware(http.HandlerFunc(acc.AccountHandler))).Methods("GET")
	apiCreate.Handle("/dashboard", api.Middleware(http.HandlerFunc(acc.DashboardHandler))).Methods("GET")
	apiCreate.Handle("/judge/health", api.Middleware(http.HandlerFunc(j.JudgeHealthHandler))).Methods("GET")

	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(c.CasesHandler))).Methods("GET")
	apiCreate.Handle("/cases/{case_id}", api.Middleware(http.HandlerFunc(c.CaseByIDHandler))).Methods("GET")

	apiCreate.Handle("/debate", api.Middleware(http.HandlerFunc(d.CreateDebateHandler))).Methods("POST")
	apiCreate.Handle("/debate/{room_code}", api.Middleware(http.HandlerFunc(d.DebateHandler))).Methods("GET")
	apiCreate.Handle("/debate/{room_code}/join", api.Middleware(http.HandlerFunc(d.JoinDebateHandler))).Methods("POST")
	apiCreate.Handle("/debate/{room_code}/role", api.Middleware(http.HandlerFunc(d.ChooseRoleHandler))).Methods("PUT")
	apiCreate.Handle("/debate/{room_code}/messages", api.Middleware(http.HandlerFunc(d.PostMessageHandler))).Methods("POST")
	apiCreate.Handle("/debate/{room_code}/submit", api.Middleware(http.HandlerFunc(d.SubmitDebateHandler))).Methods("POST")
	apiCreate.Handle("/debate/{room_code}/ws", api.Middleware(http.HandlerFunc(d.DebateStreamHandler))).Methods("GET")

	return r
}

// Initialize connects the configured store backend and builds the router
func (a *App) Initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()

	switch a.Config.StoreBackend {
	case BackendMongo:
		client, err := databases.NewClient(&a.Config)
		if err != nil {
			// if we fail to create a new database client, then kill the pod
			zap.S().With(err).Error("failed to create new client")
			return err
		}
		if err := client.Connect(ctx); err != nil {
			// if we fail to connect to the database, then kill the pod
			zap.S().With(err).Error("failed to connect to database")
			return err
		}
		a.closers = append(a.closers, client.Disconnect)
		a.store = databases.NewMongoStore(databases.NewDatabase(&a.Config, client))
		a.notifier = databases.NewMemoryNotifier()
		zap.S().Info("ai-court-api has connected to the database")
	case BackendRedis:
		rs, err := databases.NewRedisStore(ctx, a.Config.RedisURL)
		if err != nil {
			zap.S().With(err).Error("failed to connect to redis")
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return rs.Close() })
		a.store = rs
		a.notifier = databases.NewRedisNotifier(rs.Client())
		zap.S().Info("ai-court-api has connected to redis")
	case BackendMemory, "":
		a.store = databases.NewMemoryStore()
		a.notifier = databases.NewMemoryNotifier()
		zap.S().Warn("using the in-memory store, nothing survives a restart")
	default:
		return fmt.Errorf("unknown store backend %q", a.Config.StoreBackend)
	}

	a.initializeRoutes()
	return nil
}

// InitializeWith builds the router over an already opened store
func (a *App) InitializeWith(store databases.KeyValueStore, notifier databases.Notifier) {
	a.store = store
	a.notifier = notifier
	a.initializeRoutes()
}

// Engine returns the debate engine the routes use
func (a *App) Engine() *debate.Engine {
	return a.engine
}

// Close releases the store connections
func (a *App) Close(ctx context.Context) {
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			zap.S().Warnw("failed to close store", "error", err)
		}
	}
}

func (a *App) initializeRoutes() {
	if a.Judge == nil {
		a.Judge = verdict.NewClient(a.Config.VerdictAPIURL)
	}
	if a.Generator == nil {
		a.Generator = genai.NewClient(a.Config.AIAPIURL, a.Config.AIAPIKey, a.Config.AIModel)
	}
	a.engine = debate.NewEngine(
		databases.NewDebateRoomDatabase(a.store),
		a.notifier,
		a.Judge,
		a.Config.DebateTimeout,
		a.Config.SubmissionClaimTTL,
	)
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
