// @title ob1-scannerd API
// @version 1.0
// @description Scan, discover, upgrade and identify Obelisk miners

// @BasePath /

// @securityDefinitions.basic BasicAuth

package http

import (
	"net/http"
	"strings"
	"time"

	cfgstore "github.com/ob1/scannerd/config/store"
	"github.com/ob1/scannerd/coordinator"
	"github.com/ob1/scannerd/http/errorhandler"
	"github.com/ob1/scannerd/http/handler"
	api "github.com/ob1/scannerd/http/handler/api"
	"github.com/ob1/scannerd/http/validator"
	"github.com/ob1/scannerd/inventory"
	"github.com/ob1/scannerd/log"
	"github.com/ob1/scannerd/prometheus"

	httplog "github.com/ob1/scannerd/http/log"
	mwlog "github.com/ob1/scannerd/http/middleware/log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ob1/scannerd/docs"
)

var ListenAndServe = http.ListenAndServe

type Config struct {
	ID          string
	Name        string
	Scanner     string // Path to the ob1-scanner binary
	CreatedAt   time.Time
	Logger      log.Logger
	LogBuffer   log.BufferWriter
	LogEvents   log.ChannelWriter
	Coordinator coordinator.Coordinator
	Inventory   inventory.Inventory
	Config      cfgstore.Store
	Prometheus  prometheus.Reader
	Profiling   bool
	Cors        CorsConfig
	Auth        AuthConfig
}

type CorsConfig struct {
	Origins []string
}

type AuthConfig struct {
	Enable   bool
	Username string
	Password string
}

type Server interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

type server struct {
	logger log.Logger

	handler struct {
		metrics   echo.HandlerFunc
		profiling bool
		ping      *handler.PingHandler
	}

	v1handler struct {
		about     *api.AboutHandler
		slots     *api.SlotsHandler
		scanner   *api.ScannerHandler
		inventory *api.InventoryHandler
		events    *api.EventsHandler
		log       *api.LogHandler
		config    *api.ConfigHandler
	}

	middleware struct {
		log  echo.MiddlewareFunc
		auth echo.MiddlewareFunc
		cors echo.MiddlewareFunc
	}

	router *echo.Echo
}

func NewServer(config Config) (Server, error) {
	s := &server{
		logger: config.Logger,
	}

	if s.logger == nil {
		s.logger = log.New("HTTP")
	}

	if config.LogEvents == nil {
		config.LogEvents = log.NewChannelWriter()
	}

	if config.Coordinator != nil {
		s.handler.ping = handler.NewPing(config.Coordinator.Alive)
	} else {
		s.handler.ping = handler.NewPing(nil)
	}

	if config.Prometheus != nil {
		s.handler.metrics = handler.NewMetrics(config.Prometheus.HTTPHandler())
	}

	s.handler.profiling = config.Profiling

	s.v1handler.about = api.NewAbout(
		config.ID,
		config.Name,
		config.Scanner,
		config.CreatedAt,
	)

	s.v1handler.log = api.NewLog(
		config.LogBuffer,
	)

	if config.Coordinator != nil {
		s.v1handler.slots = api.NewSlots(config.Coordinator)
		s.v1handler.scanner = api.NewScanner(config.Coordinator)
		s.v1handler.events = api.NewEvents(config.LogEvents, config.Coordinator)
	}

	if config.Inventory != nil {
		s.v1handler.inventory = api.NewInventory(config.Inventory)
	}

	if config.Config != nil {
		s.v1handler.config = api.NewConfig(config.Config)
	}

	s.middleware.log = mwlog.NewWithConfig(mwlog.Config{
		Logger: s.logger,
	})

	if config.Auth.Enable {
		username, password := config.Auth.Username, config.Auth.Password

		s.middleware.auth = middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
			Validator: func(u, p string, c echo.Context) (bool, error) {
				return u == username && p == password, nil
			},
			Realm: "ob1-scannerd",
		})
	}

	if len(config.Cors.Origins) != 0 {
		s.middleware.cors = middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     config.Cors.Origins,
			AllowMethods:     []string{"GET", "HEAD", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           int((24 * time.Hour).Seconds()),
		})
	}

	s.router = echo.New()
	s.router.HTTPErrorHandler = errorhandler.New(s.logger)
	s.router.Validator = validator.New()
	s.router.Use(s.middleware.log)
	s.router.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			rows := strings.Split(string(stack), "\n")
			s.logger.Error().WithField("stack", rows).Log("recovered from a panic")
			return nil
		},
	}))

	s.router.HideBanner = true
	s.router.HidePort = true

	s.router.Logger.SetOutput(httplog.NewWrapper(s.logger.WithComponent("Echo")))

	s.setRoutes()

	return s, nil
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) setRoutes() {
	// Health check
	s.router.GET("/ping", s.handler.ping.Ping)

	// Prometheus metrics
	if s.handler.metrics != nil {
		s.router.GET("/metrics", s.handler.metrics)
	}

	// Profiling routes
	if s.handler.profiling {
		prof := s.router.Group("/profiling")

		if s.middleware.auth != nil {
			prof.Use(s.middleware.auth)
		}

		handler.RegisterProfiling(prof)
	}

	// Swagger API documentation
	doc := s.router.Group("/api/swagger/*")
	doc.GET("", echoSwagger.WrapHandler)

	// API router group
	api := s.router.Group("/api")

	if s.middleware.cors != nil {
		api.Use(s.middleware.cors)
	}

	if s.middleware.auth != nil {
		api.Use(s.middleware.auth)
	}

	v1 := api.Group("/v1")

	s.setRoutesV1(v1)
}

func (s *server) setRoutesV1(v1 *echo.Group) {
	v1.GET("/about", s.v1handler.about.About)

	// v1 Slots and processes
	if s.v1handler.slots != nil {
		v1.GET("/slots", s.v1handler.slots.GetAll)
		v1.GET("/slots/:kind", s.v1handler.slots.Get)
		v1.GET("/processes", s.v1handler.slots.Processes)
	}

	// v1 Operations
	if s.v1handler.scanner != nil {
		v1.POST("/scan", s.v1handler.scanner.Scan)
		v1.POST("/discovery", s.v1handler.scanner.Discovery)
		v1.POST("/upgrade", s.v1handler.scanner.Upgrade)
		v1.POST("/upgrade/all", s.v1handler.scanner.UpgradeAll)
		v1.POST("/identify", s.v1handler.scanner.Identify)
		v1.POST("/stop", s.v1handler.scanner.Stop)
	}

	// v1 Events
	if s.v1handler.events != nil {
		v1.GET("/events", s.v1handler.events.SlotEvents)
		v1.POST("/events/log", s.v1handler.events.LogEvents)
	}

	// v1 Inventory
	if s.v1handler.inventory != nil {
		v1.GET("/inventory", s.v1handler.inventory.Last)
		v1.GET("/inventory/devices", s.v1handler.inventory.Devices)
	}

	// v1 Config
	if s.v1handler.config != nil {
		v1.GET("/config", s.v1handler.config.Get)
	}

	// v1 Log
	v1.GET("/log", s.v1handler.log.Log)
}
