package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhtran-dev/go-flood-risk/internal/auth"
	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
	"github.com/mhtran-dev/go-flood-risk/internal/repository"
	"github.com/mhtran-dev/go-flood-risk/internal/risk"
	"github.com/mhtran-dev/go-flood-risk/internal/stream"
)

// AlertSource compiles on-demand alert output for the alert and summary
// endpoints.
type AlertSource interface {
	Compile(ctx context.Context, province string) (*models.AlertReport, error)
	RegionalSummary(ctx context.Context, province string) (*models.RegionalSummary, error)
}

const (
	maxBatchLocations = 20
	defaultHistory    = 100
	maxHistory        = 500
)

type Handler struct {
	engine      risk.Assessor
	batch       *risk.Orchestrator
	alerts      AlertSource
	repo        repository.Repository
	auth        *auth.Service
	broadcaster *stream.Broadcaster
	metrics     *observability.Metrics
}

func NewHandler(engine risk.Assessor, batch *risk.Orchestrator, alerts AlertSource,
	repo repository.Repository, authSvc *auth.Service, broadcaster *stream.Broadcaster,
	metrics *observability.Metrics) *Handler {
	return &Handler{
		engine:      engine,
		batch:       batch,
		alerts:      alerts,
		repo:        repo,
		auth:        authSvc,
		broadcaster: broadcaster,
		metrics:     metrics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/assess", h.assess)
		v1.GET("/alerts", h.getAlerts)
		v1.GET("/alerts/stream", h.streamAlerts)
		v1.GET("/summary", h.getSummary)
		v1.GET("/assessments/geojson", h.getAssessmentsGeoJSON)
		v1.GET("/stats", h.getStats)

		v1.GET("/wards", h.listWards)
		v1.GET("/wards/:code", h.getWard)

		v1.POST("/auth/register", h.register)
		v1.POST("/auth/login", h.login)

		protected := v1.Group("")
		protected.Use(h.RequireAuth())
		{
			protected.POST("/assess/batch", h.assessBatch)
			protected.POST("/wards", h.createWard)
			protected.DELETE("/wards/:code", h.deleteWard)
		}
	}
}

type assessRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Name      string   `json:"name"`
	Province  string   `json:"province"`
	District  string   `json:"district"`
	Ward      string   `json:"ward"`
	WardCode  string   `json:"ward_code"`
}

// resolveLocation turns a request into an assessment target, either from a
// registered ward code or from raw coordinates.
func (h *Handler) resolveLocation(ctx context.Context, req assessRequest) (models.Location, error) {
	if req.WardCode != "" {
		ward, err := h.repo.GetByCode(ctx, req.WardCode)
		if err != nil {
			return models.Location{}, err
		}
		return ward.Location(), nil
	}
	if req.Latitude == nil || req.Longitude == nil {
		return models.Location{}, errors.New("latitude and longitude are required")
	}
	return models.Location{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Name:      req.Name,
		Province:  req.Province,
		District:  req.District,
		Ward:      req.Ward,
	}, nil
}

func (h *Handler) assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loc, err := h.resolveLocation(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ward not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := loc.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assessment, err := h.engine.Assess(c.Request.Context(), loc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assessment failed"})
		return
	}

	h.recordAssessment(c.Request.Context(), assessment)
	c.JSON(http.StatusOK, assessment)
}

type batchAssessRequest struct {
	Locations []assessRequest `json:"locations"`
}

func (h *Handler) assessBatch(c *gin.Context) {
	var req batchAssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Locations) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one location is required"})
		return
	}
	if len(req.Locations) > maxBatchLocations {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "too many locations: limit is " + strconv.Itoa(maxBatchLocations),
		})
		return
	}

	locs := make([]models.Location, 0, len(req.Locations))
	for i, lr := range req.Locations {
		loc, err := h.resolveLocation(c.Request.Context(), lr)
		if err == nil {
			err = loc.Validate()
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "location " + strconv.Itoa(i) + ": " + err.Error(),
			})
			return
		}
		locs = append(locs, loc)
	}

	result, err := h.batch.AssessBatch(c.Request.Context(), locs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch assessment failed"})
		return
	}

	for _, a := range result.Assessments {
		h.recordAssessment(c.Request.Context(), a)
	}
	c.JSON(http.StatusOK, result)
}

// recordAssessment stores the history row behind the map overlay and the
// statistics endpoint. Failures are logged, not surfaced: the assessment
// itself already succeeded.
func (h *Handler) recordAssessment(ctx context.Context, a *models.FloodRiskAssessment) {
	rec := &models.AssessmentRecord{
		ID:               uuid.NewString(),
		Province:         a.Location.Province,
		Ward:             a.Location.Ward,
		Latitude:         a.Location.Latitude,
		Longitude:        a.Location.Longitude,
		OverallRiskScore: a.OverallRiskScore,
		RiskLevel:        a.RiskLevel,
		ConfidenceLevel:  a.ConfidenceLevel,
		CreatedAt:        a.AssessmentDate,
	}
	if err := h.repo.AddAssessment(ctx, rec); err != nil {
		slog.Warn("failed to store assessment record", "error", err)
	}
}

func (h *Handler) getAlerts(c *gin.Context) {
	province := c.Query("province")
	if province == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "province query parameter is required"})
		return
	}

	report, err := h.alerts.Compile(c.Request.Context(), province)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compile alerts"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) getSummary(c *gin.Context) {
	province := c.Query("province")
	if province == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "province query parameter is required"})
		return
	}

	summary, err := h.alerts.RegionalSummary(c.Request.Context(), province)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to build regional summary"})
		return
	}

	if n, err := h.repo.CountByProvince(c.Request.Context(), province); err == nil {
		summary.WardCount = n
	} else {
		slog.Warn("failed to count wards", "province", province, "error", err)
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) getAssessmentsGeoJSON(c *gin.Context) {
	filter := repository.AssessmentFilter{
		Province: c.Query("province"),
		Limit:    defaultHistory,
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= maxHistory {
			filter.Limit = lim
		}
	}
	if s := c.Query("since"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}

	records, err := h.repo.ListAssessments(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch assessments"})
		return
	}

	fc := toGeoJSON(records)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.repo.AssessmentStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
