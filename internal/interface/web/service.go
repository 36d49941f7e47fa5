// Package web exposes the HTTP surface: the LNURL API consumed by wallets,
// the public shoutout wall, checkout/receipt pages and the store-manager
// settings form.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lnshout/shoutout/internal/application"
)

//go:embed templates/*.html
var templatesFS embed.FS

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type Config struct {
	// AdminToken guards the management endpoints. Empty disables them.
	AdminToken string

	// DefaultAppID is the app served at the domain root.
	DefaultAppID string

	// PublicScheme/PublicHost override the request host when the daemon
	// sits behind a proxy that does not forward it.
	PublicScheme string
	PublicHost   string
	PathBase     string
}

type Service struct {
	*gin.Engine

	app *application.Service
	cfg Config
}

func NewService(appSvc *application.Service, cfg Config) (*Service, error) {
	router := gin.Default()

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(
		templatesFS, "templates/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("could not parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	svc := &Service{Engine: router, app: appSvc, cfg: cfg}

	api := router.Group("/api/v1/shoutout/lnurl")
	api.GET("/:appId/pay", svc.lnurlPay)
	api.GET("/:appId/pay-callback", svc.lnurlPayCallback)

	router.GET("/.well-known/lnurlp/:username", svc.resolveLightningAddress)

	router.GET("/", svc.publicWall)
	router.POST("/", svc.submitShoutout)
	router.GET("/apps/:appId/shoutout", svc.publicWall)
	router.POST("/apps/:appId/shoutout", svc.submitShoutout)

	router.GET("/i/:invoiceId", svc.checkout)
	router.GET("/i/:invoiceId/receipt", svc.receipt)

	settings := router.Group("/apps/:appId/settings", svc.requireAdmin)
	settings.GET("/shoutout", svc.settingsForm)
	settings.POST("/shoutout", svc.updateSettings)
	settings.GET("/shoutout/toggle/:invoiceId", svc.toggleExclude)

	return svc, nil
}

// requestContext captures scheme, host and path base for absolute URL
// construction, honoring proxy headers and configured overrides.
func (s *Service) requestContext(c *gin.Context) application.RequestContext {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := c.Request.Host

	if s.cfg.PublicHost != "" {
		host = s.cfg.PublicHost
		if s.cfg.PublicScheme != "" {
			scheme = s.cfg.PublicScheme
		}
	}

	return application.RequestContext{
		Scheme:   scheme,
		Host:     host,
		PathBase: s.cfg.PathBase,
	}
}

// appID resolves the route app id, falling back to the configured default
// for requests on the domain root.
func (s *Service) appID(c *gin.Context) string {
	if id := c.Param("appId"); id != "" {
		return id
	}
	return s.cfg.DefaultAppID
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"amount": func(value float64, currency string) string {
			return fmt.Sprintf("%.8g %s", value, currency)
		},
		"reltime": relativeTime,
	}
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	if d < 0 {
		d = -d
		switch {
		case d < time.Minute:
			return "in under a minute"
		case d < time.Hour:
			return fmt.Sprintf("in %d minutes", int(d.Minutes()))
		default:
			return fmt.Sprintf("in %d hours", int(d.Hours()))
		}
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
