package response

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/ctxutil"
)

// StartTimeKey is set by the trace middleware; metadata.duration and the
// X-Response-Time header are measured from it.
const StartTimeKey = "request_start_time"

type Metadata struct {
	Timestamp     time.Time `json:"timestamp"`
	Duration      string    `json:"duration,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	RequestID     string    `json:"requestId,omitempty"`
}

type Pagination struct {
	Limit      int    `json:"limit"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type SuccessEnvelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

type ErrorEnvelope struct {
	Success  bool                   `json:"success"`
	Error    string                 `json:"error"`
	Code     string                 `json:"code"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Metadata Metadata               `json:"metadata"`
}

func RespondOK(c *gin.Context, data interface{}) {
	RespondPage(c, data, nil)
}

func RespondPage(c *gin.Context, data interface{}, pagination *Pagination) {
	md := buildMetadata(c, true)
	c.JSON(http.StatusOK, SuccessEnvelope{
		Success:    true,
		Data:       data,
		Pagination: pagination,
		Metadata:   md,
	})
}

// RespondError maps any error onto the error envelope. Errors outside the
// closed taxonomy are normalized to INTERNAL_ERROR; their message is assumed
// already logged by the caller.
func RespondError(c *gin.Context, err error) {
	ae := apierr.From(err)
	msg := "erro interno"
	if ae.Err != nil {
		msg = ae.Err.Error()
	}
	if ae.Code == apierr.CodeInternal {
		msg = "erro interno"
	}
	c.JSON(ae.Status, ErrorEnvelope{
		Success:  false,
		Error:    msg,
		Code:     ae.Code,
		Details:  ae.Details,
		Metadata: buildMetadata(c, false),
	})
}

func buildMetadata(c *gin.Context, withDuration bool) Metadata {
	md := Metadata{Timestamp: time.Now().UTC()}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		md.CorrelationID = td.TraceID
		md.RequestID = td.RequestID
	}
	if start, ok := c.Get(StartTimeKey); ok {
		if t, ok := start.(time.Time); ok {
			elapsed := time.Since(t)
			c.Header("X-Response-Time", fmt.Sprintf("%dms", elapsed.Milliseconds()))
			if withDuration {
				md.Duration = fmt.Sprintf("%dms", elapsed.Milliseconds())
			}
		}
	}
	return md
}
