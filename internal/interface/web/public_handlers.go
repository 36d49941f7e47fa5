package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/lnshout/shoutout/internal/application"
	"github.com/lnshout/shoutout/internal/domain"
	"github.com/lnshout/shoutout/lnurl"
)

const defaultWallPageSize = 50

func (s *Service) publicWall(c *gin.Context) {
	s.renderWall(c, http.StatusOK, nil, nil)
}

// renderWall serves the wall page, optionally carrying validation errors and
// the previously submitted form values back into the template.
func (s *Service) renderWall(
	c *gin.Context, status int,
	formErrors map[string]string, form map[string]string,
) {

	appID := s.appID(c)
	if appID == "" {
		c.String(http.StatusNotFound, "the app was not found")
		return
	}

	skip := intQuery(c, "skip", 0)
	count := intQuery(c, "count", defaultWallPageSize)

	app, entries, err := s.app.PublicWall(c.Request.Context(), appID, skip, count)
	if err != nil {
		if application.IsNotFound(err) {
			c.String(http.StatusNotFound, err.Error())
			return
		}
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	canManage := s.isAdmin(c)
	if !canManage {
		visible := entries[:0]
		for _, entry := range entries {
			if !entry.Hidden {
				visible = append(visible, entry)
			}
		}
		entries = visible
	}

	payRequest, _ := s.app.GetPayRequest(
		c.Request.Context(), s.requestContext(c), app.ID,
	)
	var lnurlCode string
	if payRequest != nil {
		lnurlCode, _ = lnurl.EncodeURL(s.requestContext(c).URL(
			"/api/v1/shoutout/lnurl/" + app.ID + "/pay",
		))
	}

	c.HTML(status, "wall.html", gin.H{
		"App":       app,
		"Settings":  app.Settings,
		"Title":     app.Title(),
		"Entries":   entries,
		"CanManage": canManage,
		"LnurlCode": lnurlCode,
		"Skip":      skip,
		"Count":     count,
		"NextSkip":  skip + count,
		"Errors":    formErrors,
		"Form":      form,
	})
}

func (s *Service) submitShoutout(c *gin.Context) {
	appID := s.appID(c)
	if appID == "" {
		c.String(http.StatusNotFound, "the app was not found")
		return
	}

	form := map[string]string{
		"name":   c.PostForm("name"),
		"text":   c.PostForm("text"),
		"amount": c.PostForm("amount"),
	}
	amount, _ := strconv.ParseFloat(form["amount"], 64)

	invoice, err := s.app.SubmitShoutout(
		c.Request.Context(), s.requestContext(c), appID,
		application.SubmitShoutoutParams{
			Name:   form["name"],
			Text:   form["text"],
			Amount: amount,
		},
	)
	if err != nil {
		var validation *application.ValidationError
		if errors.As(err, &validation) {
			s.renderWall(c, http.StatusUnprocessableEntity, validation.Fields, form)
			return
		}
		if application.IsNotFound(err) {
			c.String(http.StatusNotFound, err.Error())
			return
		}
		log.WithError(err).Warn("could not submit shoutout")
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	c.Redirect(http.StatusSeeOther, "/i/"+invoice.ID)
}

func (s *Service) checkout(c *gin.Context) {
	invoice, app, err := s.app.GetInvoice(c.Request.Context(), c.Param("invoiceId"))
	if err != nil {
		c.String(http.StatusNotFound, "the invoice was not found")
		return
	}

	bolt11, err := s.app.EnsureCheckoutBolt11(c.Request.Context(), invoice, app)
	if err != nil {
		log.WithError(err).WithField("invoice", invoice.ID).
			Warn("could not generate checkout invoice")
	}

	c.HTML(http.StatusOK, "checkout.html", gin.H{
		"App":      app,
		"Invoice":  invoice,
		"Shoutout": invoice.Metadata.Shoutout,
		"Bolt11":   bolt11,
		"Paid": invoice.Status == domain.InvoiceStatusSettled ||
			invoice.Status == domain.InvoiceStatusProcessing,
		"Expired":  invoice.Status == domain.InvoiceStatusExpired,
		"Receipts": s.app.ReceiptsEnabled(app, invoice),
	})
}

func (s *Service) receipt(c *gin.Context) {
	invoice, app, err := s.app.GetInvoice(c.Request.Context(), c.Param("invoiceId"))
	if err != nil {
		c.String(http.StatusNotFound, "the invoice was not found")
		return
	}
	if !s.app.ReceiptsEnabled(app, invoice) {
		c.String(http.StatusNotFound, "receipts are not enabled")
		return
	}

	amount := invoice.Amount
	if invoice.PaidAmountNet > 0 {
		amount = invoice.PaidAmountNet
	}

	c.HTML(http.StatusOK, "receipt.html", gin.H{
		"App":      app,
		"Invoice":  invoice,
		"Shoutout": invoice.Metadata.Shoutout,
		"Amount":   amount,
		"Settled":  invoice.Status == domain.InvoiceStatusSettled,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
