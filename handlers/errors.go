package handlers

import (
	"net/http"
	"strconv"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photoapp/failure"
)

const (
	noSuchAsset = "No such asset..."
	noSuchUser  = "No such user..."
)

// abortWithError answers with the status of err's class. fields carries the
// placeholder values of the route's envelope. Server side failures are
// logged and sent to Sentry, client errors are not.
func (a *API) abortWithError(c *gin.Context, message string, err error, fields gin.H) {
	status := failure.Status(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
		captureException(c, err)
	} else {
		a.logger.Debug(message, zap.String("path", c.FullPath()), zap.Error(err))
	}

	body := gin.H{"message": message}
	for k, v := range fields {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}

// errorMessage is what the client sees for err; a missing row gets the
// fixed notFound text.
func errorMessage(err error, notFound string) string {
	if failure.NotFound.Has(err) {
		return notFound
	}
	return err.Error()
}

func captureException(c *gin.Context, err error) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}

// paramID parses a numeric path parameter.
func paramID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, failure.Validation.New("%s must be a non-negative integer, got %q", name, c.Param(name))
	}
	return id, nil
}
