package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/shadowcyng/ecomlytics/store"
)

type AnalyticsHandlers struct {
	AnalyticsStore *store.AnalyticsStore
}

func NewAnalyticsHandlers(s *store.AnalyticsStore) *AnalyticsHandlers {
	return &AnalyticsHandlers{AnalyticsStore: s}
}

const queryTimeout = 15 * time.Second

// asOf resolves the trailing-window anchor for a request: the snapshot's
// latest order date, or wall clock when ?now=wallclock is passed.
func (h *AnalyticsHandlers) asOf(ctx context.Context, c *gin.Context) (time.Time, error) {
	if c.Query("now") == "wallclock" {
		return time.Now().UTC(), nil
	}
	return h.AnalyticsStore.SnapshotNow(ctx)
}

func (h *AnalyticsHandlers) CustomerLifetimeValue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	results, err := h.AnalyticsStore.CustomerLifetimeValue(ctx)
	if err != nil {
		log.Errorf("Customer lifetime value query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute customer lifetime value"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) ProductPerformance(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	results, err := h.AnalyticsStore.ProductPerformance(ctx)
	if err != nil {
		log.Errorf("Product performance query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute product performance"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) DailySeasonality(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	asOf, err := h.asOf(ctx, c)
	if err != nil {
		log.Errorf("Failed to resolve reference time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute seasonality"})
		return
	}

	results, err := h.AnalyticsStore.DailySeasonality(ctx, asOf)
	if err != nil {
		log.Errorf("Daily seasonality query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute seasonality"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) CohortRetention(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	results, err := h.AnalyticsStore.CohortRetention(ctx)
	if err != nil {
		log.Errorf("Cohort retention query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute cohort retention"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) PaymentRisk(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	results, err := h.AnalyticsStore.PaymentRisk(ctx)
	if err != nil {
		log.Errorf("Payment risk query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute payment risk"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) ExecutiveKPIs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	asOf, err := h.asOf(ctx, c)
	if err != nil {
		log.Errorf("Failed to resolve reference time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute KPIs"})
		return
	}

	kpis, err := h.AnalyticsStore.ExecutiveKPIs(ctx, asOf)
	if err != nil {
		log.Errorf("Executive KPI query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute KPIs"})
		return
	}
	c.JSON(http.StatusOK, kpis)
}

// Report runs all six queries and returns them in one payload.
func (h *AnalyticsHandlers) Report(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	asOf, err := h.asOf(ctx, c)
	if err != nil {
		log.Errorf("Failed to resolve reference time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	report, err := h.AnalyticsStore.FullReport(ctx, asOf)
	if err != nil {
		log.Errorf("Full report failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}
