package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/moyoez/calibre-panel/api/controllers"
	"github.com/moyoez/calibre-panel/api/middlewares"
	"github.com/moyoez/calibre-panel/api/notifyhub"
	"github.com/moyoez/calibre-panel/execute"
	"github.com/moyoez/calibre-panel/rpc"
	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

// Server is the admin HTTP server: the RPC endpoint, the JSON API and the HTML panel.
type Server struct {
	cfg     types.AppConfig
	service *rpc.Service
	manager *execute.Manager
	hub     *notifyhub.Hub

	mu     sync.RWMutex
	engine *gin.Engine
	server *http.Server
}

func NewServer(cfg types.AppConfig, service *rpc.Service, manager *execute.Manager, hub *notifyhub.Hub) *Server {
	return &Server{
		cfg:     cfg,
		service: service,
		manager: manager,
		hub:     hub,
	}
}

// Handler builds the routes. It is exposed for tests.
func (s *Server) Handler() (http.Handler, error) {
	return s.setupRoutes()
}

func (s *Server) setupRoutes() (*gin.Engine, error) {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	// nil trusts no proxy; forwarded headers are then ignored
	if err := engine.SetTrustedProxies(s.cfg.TrustedProxies); err != nil {
		return nil, err
	}
	proxies, err := tool.ParseNetworks(s.cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	access, err := middlewares.AllowNetworks(s.cfg.AllowedNetworks)
	if err != nil {
		return nil, err
	}
	engine.GET("/healthz", controllers.HandleHealth(s.hub))

	rpcCtrl := controllers.NewRPCController(s.service)
	settingsCtrl := controllers.NewSettingsController(s.service)
	execCtrl := controllers.NewExecController(s.manager, s.hub)
	panelCtrl := controllers.NewPanelController(s.service, s.manager, proxies)
	// one budget for every action start, whichever surface it comes from
	actions := middlewares.RateLimit(rate.NewLimiter(rate.Limit(s.cfg.ActionRate), s.cfg.ActionBurst))

	admin := engine.Group("/", access, middlewares.OptionalBasicAuth(s.cfg.AdminUser, s.cfg.AdminPassword))
	{
		admin.POST("/rpc", rpcCtrl.HandleRPC)

		calibre := admin.Group("/api/calibre")
		calibre.GET("/settings", settingsCtrl.HandleGet)
		calibre.PUT("/settings", settingsCtrl.HandlePut)
		calibre.POST("/import", actions, settingsCtrl.HandleImport)
		calibre.POST("/update", actions, settingsCtrl.HandleUpdate)

		exec := admin.Group("/api/exec")
		exec.GET("/:id", execCtrl.HandleGet)
		exec.POST("/:id/stop", execCtrl.HandleStop)
		exec.GET("/:id/ws", execCtrl.HandleWS())

		panel := admin.Group("/panel")
		panel.GET("", panelCtrl.ShowPanel)
		panel.POST("/field", panelCtrl.HandleField)
		panel.POST("/save", panelCtrl.HandleSave)
		panel.POST("/import", actions, panelCtrl.HandleImport)
		panel.POST("/update", actions, panelCtrl.HandleUpdate)
		panel.POST("/openweb", panelCtrl.HandleOpenWeb)
		panel.GET("/openweb/qr", controllers.GenerateQRCode)
	}
	engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/panel")
	})

	return engine, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	engine, err := s.setupRoutes()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting API server on http://%s", s.cfg.Listen)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		tool.DefaultLogger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
