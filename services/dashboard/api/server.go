package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/store"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

var log = logger.GetOrCreate("api")

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ListenAddress  string
	Store          Store
	Insights       InsightRequestor
	InsightTimeout time.Duration
	// InsightRequestsPerMinute limits the analysis requests, 0 disables the limit
	InsightRequestsPerMinute uint32
	MetricsHandler           http.Handler
	GeneralHandler           func(http.Handler) http.Handler
}

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	store          Store
	insights       InsightRequestor
	insightTimeout time.Duration
	insightLimiter *rate.Limiter
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup

	mutInsights     sync.Mutex
	insightsLoading bool
	lastInsights    string

	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Store) {
		return nil, errors.New("store is required")
	}
	if check.IfNil(args.Insights) {
		return nil, errors.New("nil insight requestor")
	}
	if args.MetricsHandler == nil {
		return nil, errors.New("nil metrics handler")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		store:          args.Store,
		insights:       args.Insights,
		insightTimeout: args.InsightTimeout,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
		closing:        make(chan struct{}),
	}
	if args.InsightRequestsPerMinute > 0 {
		s.insightLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(args.InsightRequestsPerMinute)), 1)
	}

	s.setupRoutes(args.MetricsHandler)
	return s, nil
}

func (s *server) setupRoutes(metricsHandler http.Handler) {
	api := s.router.Group("/api")
	{
		api.GET("/snapshot", s.handleGetSnapshot)
		api.GET("/metrics", s.handleGetMetrics)
		api.GET("/events", s.handleGetEvents)
		api.GET("/errors", s.handleGetErrors)
		api.POST("/errors/:id/trace", s.handleTraceError)
		api.GET("/usage", s.handleGetUsage)
		api.GET("/platforms", s.handleGetPlatforms)
		api.GET("/status", s.handleGetStatus)
		api.GET("/stream", s.handleStream)
		api.GET("/insights", s.handleGetInsights)
		api.POST("/insights", s.handleRequestInsights)
	}

	s.router.GET("/metrics", gin.WrapH(metricsHandler))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close ends the open event streams and gracefully stops the server
func (s *server) Close() error {
	s.closeOnce.Do(func() {
		close(s.closing)
	})

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()

	return nil
}

// --- Handlers ---

func (s *server) handleGetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *server) handleGetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Metrics())
}

func (s *server) handleGetEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": s.store.Events()})
}

func (s *server) handleGetErrors(c *gin.Context) {
	filter := store.ErrorFilter{
		Platform: c.Query("platform"),
		Code:     c.Query("code"),
		From:     c.Query("from"),
		To:       c.Query("to"),
	}

	c.JSON(http.StatusOK, gin.H{"errors": store.FilterErrors(s.store.Errors(), filter)})
}

func (s *server) handleGetUsage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"usage": s.store.UsageSeries()})
}

func (s *server) handleGetPlatforms(c *gin.Context) {
	snapshot := s.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{"platforms": store.PlatformBreakdown(snapshot.Events, snapshot.Errors)})
}

func (s *server) handleGetStatus(c *gin.Context) {
	state := s.store.ConnectionState()
	c.JSON(http.StatusOK, gin.H{
		"connectionState": state,
		"source":          common.AuthoritativeSource(state),
	})
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *server) IsInterfaceNil() bool {
	return s == nil
}
