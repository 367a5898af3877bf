package dashboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httperr "github.com/tablescope/tablescope/internal/core/errors"
	"github.com/tablescope/tablescope/internal/metrics"
	"github.com/tablescope/tablescope/internal/serpapi"
)

// rateLimitRetryAfterSeconds is the back-off hint returned with 429s.
const rateLimitRetryAfterSeconds = 300

// RegisterRoutes registers all dashboard API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/reviews", s.HandleGetReviews)
	api.GET("/metrics", s.HandleGetMetrics)
	api.GET("/sentiment", s.HandleGetSentiment)
	api.GET("/overview", s.HandleGetOverview)
}

// pageParams is the shared query-string shape of every read endpoint.
type pageParams struct {
	Start    int    `form:"start,default=0"`
	Num      int    `form:"num,default=100"`
	Interval string `form:"interval,default=monthly"`
}

type successResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// HandleGetReviews handles GET /api/reviews?start=&num=
func (s *Service) HandleGetReviews(c *gin.Context) {
	params, ok := s.bindParams(c)
	if !ok {
		return
	}

	page, err := s.GetReviews(c.Request.Context(), PageQuery{Start: params.Start, Num: params.Num})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, page, s.nowFn())
}

// HandleGetMetrics handles GET /api/metrics?start=&num=&interval=
func (s *Service) HandleGetMetrics(c *gin.Context) {
	params, ok := s.bindParams(c)
	if !ok {
		return
	}

	summary, err := s.GetMetrics(c.Request.Context(), MetricsQuery{
		PageQuery:   PageQuery{Start: params.Start, Num: params.Num},
		Granularity: params.Interval,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, summary, s.nowFn())
}

// HandleGetSentiment handles GET /api/sentiment?start=&num=
func (s *Service) HandleGetSentiment(c *gin.Context) {
	params, ok := s.bindParams(c)
	if !ok {
		return
	}

	batch, err := s.GetSentiment(c.Request.Context(), PageQuery{Start: params.Start, Num: params.Num})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, batch, s.nowFn())
}

// HandleGetOverview handles GET /api/overview?start=&num=&interval=
func (s *Service) HandleGetOverview(c *gin.Context) {
	params, ok := s.bindParams(c)
	if !ok {
		return
	}

	overview, err := s.GetOverview(c.Request.Context(), MetricsQuery{
		PageQuery:   PageQuery{Start: params.Start, Num: params.Num},
		Granularity: params.Interval,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, overview, s.nowFn())
}

func (s *Service) bindParams(c *gin.Context) (pageParams, bool) {
	var params pageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "Invalid query parameters",
			RequestID: requestID(c),
			Details:   err.Error(),
		})
		return params, false
	}
	return params, true
}

func writeSuccess(c *gin.Context, data interface{}, now time.Time) {
	c.JSON(http.StatusOK, successResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID(c),
		Timestamp: now,
	})
}

// writeError maps the failure taxonomy onto HTTP statuses. "No data"
// never reaches here; an empty batch is a 200 with empty-but-valid
// summaries.
func writeError(c *gin.Context, err error) {
	resp := httperr.ErrorResponse{
		Message:   err.Error(),
		RequestID: requestID(c),
	}

	switch {
	case errors.Is(err, ErrInvalidQuery) || errors.Is(err, metrics.ErrInvalidGranularity):
		resp.ErrorType = httperr.HttpValidationError
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, serpapi.ErrAuthentication):
		resp.ErrorType = httperr.HttpAuthenticationError
		resp.Message = "API authentication failed. Please check configuration."
		c.JSON(http.StatusUnauthorized, resp)
	case errors.Is(err, serpapi.ErrRateLimit):
		resp.ErrorType = httperr.HttpRateLimitError
		resp.Message = "Too many requests. Please try again in a few minutes."
		resp.RetryAfter = rateLimitRetryAfterSeconds
		c.JSON(http.StatusTooManyRequests, resp)
	case errors.Is(err, serpapi.ErrNotFound):
		resp.ErrorType = httperr.HttpNotFoundError
		resp.Message = "No review data found for the configured place."
		c.JSON(http.StatusNotFound, resp)
	case errors.Is(err, serpapi.ErrMalformedResponse):
		resp.ErrorType = httperr.HttpMalformedUpstreamError
		resp.Message = "Invalid response from the review service."
		c.JSON(http.StatusBadGateway, resp)
	case errors.Is(err, serpapi.ErrNetwork):
		resp.ErrorType = httperr.HttpNetworkError
		resp.Message = "Unable to reach the review service. Please try again later."
		c.JSON(http.StatusServiceUnavailable, resp)
	default:
		resp.ErrorType = httperr.HttpInternalError
		resp.Message = "An unexpected error occurred."
		c.JSON(http.StatusInternalServerError, resp)
	}
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}
