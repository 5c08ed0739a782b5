package http

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/vessel-resource-service/pkg/engine"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
)

type ActionRequest struct {
	Amount float64 `json:"amount"`
	Action string  `json:"action"`
}

// zero is a valid manual_update amount, so Amount is not Required
var actionRequestSchema = z.Struct(z.Shape{
	"Amount": z.Float64().GTE(0),
	"Action": z.String().Min(1).Required(),
})

func (rs *RestfulServer) PostAction(c *gin.Context) {
	t, ok := parseResourceType(c)
	if !ok {
		return
	}

	var req ActionRequest
	if err := actionRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	// unknown actions come back as a warning result
	result, err := rs.Vessel.Resource.ApplyResourceAction(c.Request.Context(), t, req.Amount, models.Action(req.Action), actorOf(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type DeliveryRequest struct {
	Amount   float64 `json:"amount"`
	Document string  `json:"document"`
}

var deliveryRequestSchema = z.Struct(z.Shape{
	"Amount":   z.Float64().Required().GT(0),
	"Document": z.String().Max(256),
})

func (rs *RestfulServer) PostDelivery(c *gin.Context) {
	t, ok := parseResourceType(c)
	if !ok {
		return
	}

	var req DeliveryRequest
	if err := deliveryRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	result, err := rs.Vessel.Resource.RecordDelivery(c.Request.Context(), t, req.Amount, req.Document, actorOf(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (rs *RestfulServer) GetResourceStatus(c *gin.Context) {
	status, err := rs.Vessel.Resource.GetResourceStatus(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type PageQuery struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Page      int       `json:"page"`
	Limit     int       `json:"limit"`
}

// query params are matched by shape key, so the keys carry the wire names.
// Limit above store.MaxPageLimit is clamped by HistoryFilter.Normalize.
var pageQuerySchema = z.Struct(z.Shape{
	"startDate": z.Time(),
	"endDate":   z.Time(),
	"page":      z.Int().GTE(0),
	"limit":     z.Int().GTE(0),
})

// parsePageQuery writes a 400 and returns false when the query is malformed.
func parsePageQuery(c *gin.Context) (store.HistoryFilter, bool) {
	var q PageQuery
	if err := pageQuerySchema.Parse(zhttp.Request(c.Request), &q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return store.HistoryFilter{}, false
	}

	filter := store.HistoryFilter{Page: q.Page, Limit: q.Limit}
	if !q.StartDate.IsZero() {
		filter.StartDate = &q.StartDate
	}
	if !q.EndDate.IsZero() {
		filter.EndDate = &q.EndDate
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate is before startDate"})
		return store.HistoryFilter{}, false
	}
	return filter, true
}

func (rs *RestfulServer) GetHistory(c *gin.Context) {
	t, ok := parseResourceType(c)
	if !ok {
		return
	}
	filter, ok := parsePageQuery(c)
	if !ok {
		return
	}

	page, err := rs.Vessel.Resource.GetHistory(c.Request.Context(), t, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (rs *RestfulServer) GetDeliveries(c *gin.Context) {
	t, ok := parseResourceType(c)
	if !ok {
		return
	}
	filter, ok := parsePageQuery(c)
	if !ok {
		return
	}

	page, err := rs.Vessel.Resource.GetDeliveries(c.Request.Context(), t, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// RemainingResponse carries nil hours and days when the resource is not being consumed.
type RemainingResponse struct {
	Resource  models.ResourceType `json:"resource"`
	Absolute  float64             `json:"absolute"`
	Hours     *float64            `json:"hours"`
	Days      *float64            `json:"days"`
	Unbounded bool                `json:"unbounded"`
}

func toRemainingResponse(t models.ResourceType, r engine.Remaining) RemainingResponse {
	resp := RemainingResponse{Resource: t, Absolute: r.Absolute}
	if math.IsInf(r.Hours, 0) || math.IsNaN(r.Hours) {
		resp.Unbounded = true
		return resp
	}
	hours, days := r.Hours, r.Days
	resp.Hours = &hours
	resp.Days = &days
	return resp
}

func (rs *RestfulServer) GetRemaining(c *gin.Context) {
	t, ok := parseResourceType(c)
	if !ok {
		return
	}

	remaining, err := rs.Vessel.Resource.GetRemaining(c.Request.Context(), t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRemainingResponse(t, remaining))
}

type EngineRequest struct {
	Running bool `json:"running"`
}

var engineRequestSchema = z.Struct(z.Shape{
	"Running": z.Bool(),
})

func (rs *RestfulServer) GetEngine(c *gin.Context) {
	if rs.Engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine control not available"})
		return
	}
	state, err := rs.Engine.EngineState(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (rs *RestfulServer) PostEngine(c *gin.Context) {
	if rs.Engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine control not available"})
		return
	}

	var req EngineRequest
	if err := engineRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	ctx := c.Request.Context()
	var err error
	if req.Running {
		err = rs.Engine.StartEngine(ctx, actorOf(c))
	} else {
		err = rs.Engine.StopEngine(ctx, actorOf(c))
	}
	if err != nil {
		writeError(c, err)
		return
	}

	state, err := rs.Engine.EngineState(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"Rate":  z.Float64().Required().GT(0),
	"Burst": z.Int().Required().GTE(1),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	actorID := c.Param("actor_id")

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(actorID, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}
