package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/insightpilot/insightpilot/pkg/chart"
	"github.com/insightpilot/insightpilot/pkg/config"
	"github.com/insightpilot/insightpilot/pkg/database"
	"github.com/insightpilot/insightpilot/pkg/llm"
	"github.com/insightpilot/insightpilot/pkg/middleware"
	"github.com/insightpilot/insightpilot/pkg/requestlogger"
	"github.com/insightpilot/insightpilot/pkg/rpc"
	"github.com/insightpilot/insightpilot/pkg/service"
	"github.com/insightpilot/insightpilot/pkg/service/core"
	"github.com/insightpilot/insightpilot/pkg/service/core/handlers"
	"github.com/insightpilot/insightpilot/pkg/service/core/routes"
	"github.com/insightpilot/insightpilot/pkg/service/core/storage/postgres"
	"github.com/insightpilot/insightpilot/pkg/syncers/historycleaner"
)

const (
	envPrefix = "INSIGHTPILOT"

	historyCleanFrequency = 6 * time.Hour
	shutdownGrace         = 5 * time.Second
)

func main() {
	configFile := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	parts, err := config.ProcessConfigPath(*configFile)
	if err != nil {
		stderrExit("processing config path", err)
	}

	cfg, err := config.NewFileSystemLoader().Load(parts.FileName, parts.Path, envPrefix, config.NewDefaultEnvBinder())
	if err != nil {
		stderrExit("loading config", err)
	}

	if err := cfg.Validate(); err != nil {
		stderrExit("validating config", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		stderrExit("parsing log level", err)
	}

	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	switch cfg.Mode {
	case config.ModeClient:
		runClient(ctx, cfg, log)
	default:
		runServer(ctx, cfg, log)
	}
}

// runServer hosts the full pipeline. Standalone mode serves the HTTP
// API only, server mode additionally exposes the gRPC facade for
// remote clients.
func runServer(ctx context.Context, cfg config.Config, log zerolog.Logger) {
	repo, err := database.New(ctx, cfg.Metastore.ConnectionString(),
		cfg.Metastore.Configuration.MaxOpenConnections,
		cfg.Metastore.Configuration.MaxIdleConnections,
		log.With().Str("subsystem", "metastore").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("opening metastore")
	}
	defer repo.Close()

	connectionStorage := postgres.NewConnectionStorage(repo)
	historyStorage := postgres.NewHistoryStorage(repo)
	schemaCacheStorage := postgres.NewSchemaCacheStorage(repo)

	llmTimeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	queryTimeout := time.Duration(cfg.Security.QueryTimeoutSeconds) * time.Second

	llmClient := llm.NewClient(log.With().Str("subsystem", "llm").Logger())
	registerProviders(ctx, cfg, llmClient, connectionStorage, llmTimeout, log)

	llmService := core.NewLLMService(llmClient, connectionStorage)
	historyService := core.NewHistoryService(historyStorage)
	schemaService := core.NewSchemaService(connectionStorage, schemaCacheStorage, time.Hour, cfg.Security.MaxRows, log)
	connectionService := core.NewConnectionService(connectionStorage, llmTimeout, log)
	renderer := chart.NewRenderer(cfg.Export.ChartWidth, cfg.Export.ChartHeight, cfg.Export.ChartDPI)
	chartService := core.NewChartService(llmService, renderer, log)
	queryService := core.NewQueryService(connectionStorage, schemaService, llmService, historyService, chartService, queryTimeout, cfg.Security.MaxRows, log)

	services := core.NewServices(connectionService, schemaService, llmService, queryService, historyService, chartService)

	go historycleaner.New(historyService, cfg.Security.MaxHistoryDays, log.With().Str("subsystem", "historycleaner").Logger()).
		Run(ctx, historyCleanFrequency)

	h := handlers.NewHandlers(services)
	auth := middleware.BearerToken(cfg.API.AuthToken, log)

	router := newRouter(log)
	routes.Add(router,
		routes.NewConnectionRoutes(routes.NewConnectionEndpoints(log, h.ConnectionsHandler), auth),
		routes.NewQueryRoutes(routes.NewQueryEndpoints(log, h.QueryHandler), auth),
		routes.NewSchemaRoutes(routes.NewSchemaEndpoints(log, h.SchemaHandler), auth),
		routes.NewHistoryRoutes(routes.NewHistoryEndpoints(log, h.HistoryHandler), auth),
		routes.NewLLMRoutes(routes.NewLLMEndpoints(log, h.LLMHandler), auth),
		routes.NewChartRoutes(routes.NewChartEndpoints(log, h.ChartHandler), auth),
		routes.NewMetricsRoutes(routes.NewMetricsEndpoints(newPromRegistry())),
		routes.NewHealthRoutes(routes.NewHealthEndpoints(repo)),
	)

	if cfg.Debug {
		if err := routes.Print(router, os.Stdout); err != nil {
			log.Warn().Err(err).Msg("printing routes")
		}
	}

	var grpcServer *rpc.Server
	if cfg.Mode == config.ModeServer {
		grpcServer = rpc.NewServer(services, log.With().Str("subsystem", "grpc").Logger())

		grpcPort, err := strconv.Atoi(cfg.Server.GRPCPort)
		if err != nil {
			log.Fatal().Err(err).Msg("parsing grpc port")
		}

		go func() {
			if err := grpcServer.Serve(grpcPort); err != nil {
				log.Fatal().Err(err).Msg("grpc server failed")
			}
		}()
	}

	serveHTTP(ctx, cfg, router, log)

	if grpcServer != nil {
		grpcServer.Stop()
	}
}

// runClient serves the HTTP API backed by a remote server instance
// over gRPC.
func runClient(ctx context.Context, cfg config.Config, log zerolog.Logger) {
	client, err := rpc.NewClient(cfg.Server.RemoteEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to remote server")
	}
	defer client.Close()

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := client.HealthCheck(probeCtx); err != nil {
		log.Warn().Err(err).Str("endpoint", cfg.Server.RemoteEndpoint).Msg("remote server not healthy yet")
	}
	cancel()

	queryHandler := handlers.NewQueryHandler(rpc.NewRemoteQueryService(client))
	schemaHandler := handlers.NewSchemaHandler(rpc.NewRemoteSchemaService(client))
	connectionsHandler := handlers.NewConnectionsHandler(rpc.NewRemoteConnectionService(client))

	auth := middleware.BearerToken(cfg.API.AuthToken, log)

	router := newRouter(log)
	routes.Add(router,
		routes.NewQueryRoutes(routes.NewQueryEndpoints(log, queryHandler), auth),
		routes.NewSchemaRoutes(routes.NewSchemaEndpoints(log, schemaHandler), auth),
		routes.NewConnectionRoutes(routes.NewConnectionEndpoints(log, connectionsHandler), auth),
		routes.NewMetricsRoutes(routes.NewMetricsEndpoints(newPromRegistry())),
		routes.NewHealthRoutes(routes.NewHealthEndpoints(remotePinger{client})),
	)

	serveHTTP(ctx, cfg, router, log)
}

// registerProviders loads saved llm connections and registers a
// provider per connection.
func registerProviders(ctx context.Context, cfg config.Config, client *llm.Client, storage service.ConnectionStorage, timeout time.Duration, log zerolog.Logger) {
	conns, err := storage.GetConnections(ctx, service.ConnectionTypeLLM)
	if err != nil {
		log.Error().Err(err).Msg("loading llm connections")
		return
	}

	for _, conn := range conns {
		provider, err := llm.NewProviderForConnection(conn, timeout)
		if err != nil {
			log.Warn().Err(err).Str("connection", conn.Name).Msg("skipping llm connection")
			continue
		}

		client.AddProvider(conn.Name, provider)
		log.Info().Str("connection", conn.Name).Str("provider", conn.Subtype).Msg("registered llm provider")
	}

	if cfg.LLM.DefaultConnection != "" {
		if err := client.SetCurrent(cfg.LLM.DefaultConnection); err != nil {
			log.Warn().Err(err).Str("connection", cfg.LLM.DefaultConnection).Msg("default llm connection not registered")
		}
	}
}

func newRouter(log zerolog.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(requestlogger.Middleware(log,
		"/internal/isalive",
		"/internal/isready",
		"/internal/metrics",
	))

	return router
}

func newPromRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(core.QueryExecutions)
	r.MustRegister(llm.GenerationAttempts)

	return r
}

func serveHTTP(ctx context.Context, cfg config.Config, router chi.Router, log zerolog.Logger) {
	server := http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Address, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("mode", cfg.Mode).Msg("http server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown error")
	}
}

type remotePinger struct {
	client *rpc.Client
}

func (p remotePinger) Ping(ctx context.Context) error {
	return p.client.HealthCheck(ctx)
}

func stderrExit(msg string, err error) {
	log := zerolog.New(os.Stderr)
	log.Fatal().Err(err).Msg(msg)
}
