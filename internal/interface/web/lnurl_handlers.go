package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/lnshout/shoutout/internal/application"
	"github.com/lnshout/shoutout/lnurl"
)

// lnurlError maps application errors onto the wire: missing or ineligible
// apps are plain 404s, everything else becomes an LNURL error document.
func (s *Service) lnurlError(c *gin.Context, err error) {
	if application.IsNotFound(err) {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusBadRequest, lnurl.Error(err.Error()))
}

func (s *Service) lnurlPay(c *gin.Context) {
	payRequest, err := s.app.GetPayRequest(
		c.Request.Context(), s.requestContext(c), c.Param("appId"),
	)
	if err != nil {
		s.lnurlError(c, err)
		return
	}
	c.JSON(http.StatusOK, payRequest)
}

func (s *Service) lnurlPayCallback(c *gin.Context) {
	var amount *lnwire.MilliSatoshi
	if raw := c.Query("amount"); raw != "" {
		msat, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, lnurl.Error("invalid amount"))
			return
		}
		a := lnwire.MilliSatoshi(msat)
		amount = &a
	}

	result, err := s.app.Callback(
		c.Request.Context(), s.requestContext(c), c.Param("appId"),
		amount, c.Query("comment"),
	)
	if err != nil {
		s.lnurlError(c, err)
		return
	}

	if result.PayRequest != nil {
		c.JSON(http.StatusOK, result.PayRequest)
		return
	}
	c.JSON(http.StatusOK, result.Response)
}

// resolveLightningAddress serves LUD-16 addresses. The resolver yields nil
// when no app claims the username so that a fronting proxy can fall through
// to other handlers; from this daemon's point of view that is a 404.
func (s *Service) resolveLightningAddress(c *gin.Context) {
	payRequest, err := s.app.ResolveLightningAddress(
		c.Request.Context(), s.requestContext(c),
		c.Param("username"), c.Query("appId"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, lnurl.Error(err.Error()))
		return
	}
	if payRequest == nil {
		c.JSON(http.StatusNotFound, lnurl.Error("unknown lightning address"))
		return
	}
	c.JSON(http.StatusOK, payRequest)
}
