package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
)

type AlertQuery struct {
	Resource string `json:"resource"`
	Severity string `json:"severity"`
	Active   string `json:"active"`
}

var alertQuerySchema = z.Struct(z.Shape{
	"resource": z.String(),
	"severity": z.String(),
	"active":   z.String(),
})

func (rs *RestfulServer) GetAlerts(c *gin.Context) {
	var q AlertQuery
	if err := alertQuerySchema.Parse(zhttp.Request(c.Request), &q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	var filter store.AlertFilter
	if q.Resource != "" {
		t, ok := models.ParseResourceType(q.Resource)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown resource " + q.Resource})
			return
		}
		filter.Resource = t
	}
	switch models.Severity(q.Severity) {
	case "":
	case models.SeverityWarning, models.SeverityCritical:
		filter.Severity = models.Severity(q.Severity)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity " + q.Severity})
		return
	}
	switch q.Active {
	case "":
	case "true":
		active := true
		filter.Active = &active
	case "false":
		active := false
		filter.Active = &active
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
		return
	}

	var alerts []models.Alert
	var err error
	if alerts, err = rs.Vessel.Alert.ListAlerts(c.Request.Context(), filter); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (rs *RestfulServer) GetAlertStats(c *gin.Context) {
	stats, err := rs.Vessel.Alert.GetAlertStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (rs *RestfulServer) AcknowledgeAlert(c *gin.Context) {
	alert, err := rs.Vessel.Alert.AcknowledgeAlert(c.Request.Context(), c.Param("id"), actorOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (rs *RestfulServer) ResolveAlert(c *gin.Context) {
	alert, err := rs.Vessel.Alert.ResolveAlert(c.Request.Context(), c.Param("id"), actorOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (rs *RestfulServer) SoundPlayed(c *gin.Context) {
	alert, err := rs.Vessel.Alert.RecordSoundPlayed(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (rs *RestfulServer) GetThresholds(c *gin.Context) {
	thresholds, err := rs.Vessel.Threshold.GetUserThresholds(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, thresholds)
}

type ThresholdRequest struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

var thresholdRequestSchema = z.Struct(z.Shape{
	"Warning":  z.Float64().GTE(0).LTE(100),
	"Critical": z.Float64().GTE(0).LTE(100),
})

func (rs *RestfulServer) PostThreshold(c *gin.Context) {
	t, ok := parseResourceType(c)
	if !ok {
		return
	}

	var req ThresholdRequest
	if err := thresholdRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	th := models.Thresholds{Warning: req.Warning, Critical: req.Critical}
	if err := rs.Vessel.Threshold.UpsertThreshold(c.Request.Context(), c.Param("user_id"), t, th); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, th)
}

type CrewRequest struct {
	ID          string `json:"id" zog:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	NotifyEmail bool   `json:"notifyEmail"`
	NotifySMS   bool   `json:"notifySms" zog:"notifySms"`
}

var crewRequestSchema = z.Struct(z.Shape{
	"ID":          z.String().Min(1).Required(),
	"Name":        z.String().Min(1).Required(),
	"Email":       z.String().Email(),
	"Phone":       z.String().Max(32),
	"NotifyEmail": z.Bool(),
	"NotifySMS":   z.Bool(),
})

func (rs *RestfulServer) PostCrewMember(c *gin.Context) {
	var req CrewRequest
	if err := crewRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	member := models.CrewMember{
		ID:          req.ID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		NotifyEmail: req.NotifyEmail,
		NotifySMS:   req.NotifySMS,
	}
	if err := rs.Vessel.Threshold.UpsertCrewMember(c.Request.Context(), member); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}
