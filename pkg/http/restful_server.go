package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"liyu1981.xyz/vessel-resource-service/pkg/alerts"
	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/report"
	"liyu1981.xyz/vessel-resource-service/pkg/scheduler"
	"liyu1981.xyz/vessel-resource-service/pkg/vessel"
)

const HeaderActorID = "X-Actor-ID"

// EngineController is implemented by scheduler.Scheduler.
type EngineController interface {
	StartEngine(ctx context.Context, actor string) error
	StopEngine(ctx context.Context, actor string) error
	EngineState(ctx context.Context) (models.EngineState, error)
}

type RestfulServer struct {
	Server           *gin.Engine
	Vessel           *vessel.Vessel
	Engine           EngineController
	Broadcaster      *broadcast.Broadcaster
	Reports          *report.Registry
	RateLimiterStore *vessel.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(actorID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(actorID)
	}
}

func (rs *RestfulServer) CheckActorLimiter(actorID string) bool {
	limiter := rs.GetLimiter(actorID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(actorID string, actorRate float64, actorBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(actorID, rate.Limit(actorRate), actorBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)
	rs.Server.GET("/metrics", gin.WrapH(promhttp.Handler()))
	rs.Server.GET("/events", rs.StreamEvents)

	api := rs.Server.Group("/", rs.limitByActor)
	{
		api.GET("/resources", rs.GetResourceStatus)
		resources := api.Group("/resources/:type")
		{
			resources.GET("/history", rs.GetHistory)
			resources.GET("/deliveries", rs.GetDeliveries)
			resources.GET("/remaining", rs.GetRemaining)
			resources.POST("/actions", rs.PostAction)
			resources.POST("/deliveries", rs.PostDelivery)
		}

		api.GET("/engine", rs.GetEngine)
		api.POST("/engine", rs.PostEngine)

		api.GET("/alerts", rs.GetAlerts)
		api.GET("/alerts/stats", rs.GetAlertStats)
		alert := api.Group("/alerts/:id")
		{
			alert.POST("/acknowledge", rs.AcknowledgeAlert)
			alert.POST("/resolve", rs.ResolveAlert)
			alert.POST("/sound", rs.SoundPlayed)
		}

		api.GET("/thresholds/:user_id", rs.GetThresholds)
		api.POST("/thresholds/:user_id/:type", rs.PostThreshold)
		api.POST("/crew", rs.PostCrewMember)

		api.GET("/reports/:type", rs.GetReport)
		api.POST("/limiter/:actor_id", rs.PostLimiter)
	}
}

func actorOf(c *gin.Context) string {
	if actor := c.GetHeader(HeaderActorID); actor != "" {
		return actor
	}
	return common.AnonymousActor
}

func (rs *RestfulServer) limitByActor(c *gin.Context) {
	if !rs.CheckActorLimiter(actorOf(c)) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}
	c.Next()
}

// parseResourceType writes a 404 and returns false for unknown resource names.
func parseResourceType(c *gin.Context) (models.ResourceType, bool) {
	t, ok := models.ParseResourceType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown resource " + c.Param("type")})
		return "", false
	}
	return t, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, vessel.ErrUnknownResource), errors.Is(err, alerts.ErrAlertNotFound):
		return http.StatusNotFound
	case errors.Is(err, vessel.ErrInvalidThreshold):
		return http.StatusBadRequest
	case errors.Is(err, scheduler.ErrDepleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		common.GetLoggerWith(common.LoggerNameRestfulServer).Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
