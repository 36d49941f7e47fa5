package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lnshout/shoutout/internal/application"
)

// isAdmin checks the bearer token. With no token configured the management
// surface stays locked.
func (s *Service) isAdmin(c *gin.Context) bool {
	if s.cfg.AdminToken == "" {
		return false
	}
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		token, _ = c.Cookie("shoutout_admin")
	}
	return subtle.ConstantTimeCompare(
		[]byte(token), []byte(s.cfg.AdminToken),
	) == 1
}

func (s *Service) requireAdmin(c *gin.Context) {
	if !s.isAdmin(c) {
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}

func (s *Service) settingsForm(c *gin.Context) {
	app, err := s.app.GetApp(c.Request.Context(), c.Param("appId"))
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}

	c.HTML(http.StatusOK, "settings.html", gin.H{
		"App":          app,
		"Settings":     app.Settings,
		"LnurlEnabled": s.app.IsLnurlEnabled(app),
		"Errors":       map[string]string{},
	})
}

func (s *Service) updateSettings(c *gin.Context) {
	appID := c.Param("appId")

	minAmount, _ := strconv.ParseFloat(c.PostForm("minAmount"), 64)
	update := application.SettingsUpdate{
		AppName:  c.PostForm("appName"),
		Archived: c.PostForm("archived") == "on",

		Title:                      c.PostForm("title"),
		Currency:                   c.PostForm("currency"),
		Description:                c.PostForm("description"),
		ButtonText:                 c.PostForm("buttonText"),
		ShowHeader:                 c.PostForm("showHeader") == "on",
		ShowRelativeDate:           c.PostForm("showRelativeDate") == "on",
		MinAmount:                  minAmount,
		LightningAddressIdentifier: c.PostForm("lightningAddressIdentifier"),
		ExcludeInvoiceID:           c.PostFormArray("excludeInvoiceId"),
	}

	app, err := s.app.UpdateSettings(c.Request.Context(), appID, update)
	if err != nil {
		var validation *application.ValidationError
		if errors.As(err, &validation) {
			current, getErr := s.app.GetApp(c.Request.Context(), appID)
			if getErr != nil {
				c.String(http.StatusNotFound, getErr.Error())
				return
			}
			c.HTML(http.StatusUnprocessableEntity, "settings.html", gin.H{
				"App":          current,
				"Settings":     current.Settings,
				"LnurlEnabled": s.app.IsLnurlEnabled(current),
				"Errors":       validation.Fields,
			})
			return
		}
		c.String(http.StatusNotFound, err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/apps/"+app.ID+"/settings/shoutout")
}

func (s *Service) toggleExclude(c *gin.Context) {
	appID := c.Param("appId")

	if _, err := s.app.ToggleExcluded(
		c.Request.Context(), appID, c.Param("invoiceId"),
	); err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/apps/"+appID+"/shoutout")
}
