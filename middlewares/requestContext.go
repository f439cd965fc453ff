package middlewares

import (
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	HeaderCorrelationId  = "X-Correlation-Id"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// RequestContextMiddleware attaches the correlation id, client ip and idempotency key to the request context.
// The correlation id is generated once per request when the caller did not send one.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := strings.TrimSpace(c.GetHeader(HeaderCorrelationId))
		if cid == "" {
			cid = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), cid)
		ctx = utils.SetClientIPInContext(ctx, c.ClientIP())
		if key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)); key != "" {
			ctx = utils.SetIdempotencyKeyInContext(ctx, key)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderCorrelationId, cid)
		c.Next()
	}
}

// ErrorLogger logs only requests that collected errors
func ErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":           c.FullPath(),
				"method":         c.Request.Method,
				"status":         c.Writer.Status(),
				"correlation_id": cid,
			}).Error(c.Errors.String())
		}
	}
}
