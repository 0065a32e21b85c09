// Package web serves the manufacturing dashboard page and its JSON API.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/dashboard"
)

//go:embed templates/*.tpl
var templates embed.FS

var ErrNotRunning = errors.New("web service not running")

type Config struct {
	Addr    string
	DevMode bool
	Title   string
}

func NewConfig() *Config {
	cfg := &Config{
		Addr:  "127.0.0.1:8050",
		Title: "ETO Manufacturing Dashboard",
	}
	return cfg
}

// Snapshotter yields the dataset to render.
type Snapshotter interface {
	Current() *dashboard.Dataset
}

type Service struct {
	listener net.Listener
	handler  http.Handler
	server   *http.Server
	mu       sync.Mutex

	Config *Config
	Data   Snapshotter
}

func New(data Snapshotter, cfg *Config) *Service {
	if cfg == nil {
		cfg = NewConfig()
	}
	service := &Service{
		Config: cfg,
		Data:   data,
	}
	service.handler = service.activateRoutes()
	return service
}

func (service *Service) Start() error {
	log.Info("Service starting..")

	service.mu.Lock()
	defer service.mu.Unlock()

	if service.listener != nil {
		return fmt.Errorf("already listening on %v", service.listener.Addr())
	}

	var err error

	if service.listener, err = net.Listen("tcp", service.Config.Addr); err != nil {
		return err
	}

	service.server = &http.Server{
		Handler:           service.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g := errgroup.Group{}
	server, listener := service.server, service.listener
	g.Go(func() error { return server.Serve(listener) })

	go func() {
		if err := g.Wait(); err != nil && err != http.ErrServerClosed {
			log.Errorf("run server result: %s", err)
			return
		}
		log.Debug("run server result: closed")
	}()

	log.WithField("addr", service.listener.Addr()).Info("Service started")
	return nil
}

func (service *Service) Stop() error {
	log.Info("Service stopping..")

	service.mu.Lock()
	defer service.mu.Unlock()
	if service.listener == nil {
		return ErrNotRunning
	}
	service.server.Close()
	service.listener = nil
	log.Info("Service stopped")
	return nil
}

func (service *Service) Addr() net.Addr {
	service.mu.Lock()
	defer service.mu.Unlock()
	if service.listener != nil {
		return service.listener.Addr()
	}
	return nil
}

// Handler exposes the router, mostly for tests.
func (service *Service) Handler() http.Handler {
	return service.handler
}

func (service *Service) activateRoutes() *gin.Engine {
	if !service.Config.DevMode && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(LoggerMiddleware(), gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(funcMap()).ParseFS(templates, "templates/*.tpl")))

	r.GET("/", service.index)
	r.GET("/healthz", service.healthz)

	v1 := r.Group("/api/v1", service.requireData)
	{
		v1.GET("/summary", service.summary)
		v1.GET("/projects", service.projects)
		v1.GET("/resources", service.resources)
		v1.GET("/inventory", service.inventory)
		v1.GET("/kpis", service.kpis)
		v1.GET("/charts", service.charts)
	}
	return r
}

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithField("method", c.Request.Method).WithField("url", c.Request.URL.String()).WithField("status", c.Writer.Status()).WithField("latency", time.Since(start)).WithField("remote-addr", c.ClientIP())
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("http handler failed")
		case status >= 400:
			entry.Warn("http handler invoked")
		default:
			entry.Info("http handler invoked")
		}
	}
}

func funcMap() template.FuncMap {
	fm := sprig.FuncMap()
	fm["color"] = func(name string) string {
		return dashboard.Palette[name]
	}
	return fm
}

// requireData aborts API requests until the first dataset has loaded.
func (service *Service) requireData(c *gin.Context) {
	if service.dataset() == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "dataset not loaded yet"})
		return
	}
	c.Next()
}

func (service *Service) dataset() *dashboard.Dataset {
	if service.Data == nil {
		return nil
	}
	return service.Data.Current()
}

type page struct {
	Title     string
	Summary   dashboard.Summary
	Dataset   *dashboard.Dataset
	Charts    []dashboard.Chart
	Tabs      []string
	Palette   map[string]string
	Generated time.Time
}

func (service *Service) index(c *gin.Context) {
	ds := service.dataset()
	if ds == nil {
		c.String(http.StatusServiceUnavailable, "dataset not loaded yet")
		return
	}
	c.HTML(http.StatusOK, "index.tpl", page{
		Title:     service.Config.Title,
		Summary:   dashboard.Summarize(ds),
		Dataset:   ds,
		Charts:    dashboard.Charts(ds),
		Tabs:      dashboard.Tabs,
		Palette:   dashboard.Palette,
		Generated: ds.LoadedAt,
	})
}

func (service *Service) healthz(c *gin.Context) {
	ds := service.dataset()
	if ds == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"source":    ds.Source,
		"loaded_at": ds.LoadedAt,
	})
}

func (service *Service) summary(c *gin.Context) {
	c.JSON(http.StatusOK, dashboard.Summarize(service.dataset()))
}

func (service *Service) projects(c *gin.Context) {
	c.JSON(http.StatusOK, service.dataset().Projects)
}

func (service *Service) resources(c *gin.Context) {
	c.JSON(http.StatusOK, service.dataset().Resources)
}

func (service *Service) inventory(c *gin.Context) {
	c.JSON(http.StatusOK, service.dataset().Inventory)
}

type kpiRow struct {
	Month string `json:"month"`
	dashboard.KPIRecord
}

func (service *Service) kpis(c *gin.Context) {
	ds := service.dataset()
	rows := make([]kpiRow, 0, len(ds.KPIs))
	for _, k := range ds.KPIs {
		rows = append(rows, kpiRow{Month: k.Month(), KPIRecord: k})
	}
	c.JSON(http.StatusOK, rows)
}

func (service *Service) charts(c *gin.Context) {
	ds := service.dataset()
	if tab := c.Query("tab"); tab != "" {
		c.JSON(http.StatusOK, dashboard.ChartsForTab(ds, tab))
		return
	}
	c.JSON(http.StatusOK, dashboard.Charts(ds))
}
