package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"user-crud-api/pkg/logger"
)

// RequestIDHeader is the HTTP header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// TraceIDHeader is the HTTP header carrying an upstream trace ID.
const TraceIDHeader = "X-Trace-ID"

// RequestID propagates X-Request-ID (generating a UUID when absent) and
// X-Trace-ID into the request context and echoes them on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logger.ContextWithRequestID(c.Request.Context(), requestID)
		c.Header(RequestIDHeader, requestID)

		if traceID := c.GetHeader(TraceIDHeader); traceID != "" {
			ctx = logger.ContextWithTraceID(ctx, traceID)
			c.Header(TraceIDHeader, traceID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
