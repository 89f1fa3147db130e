// Package handler exposes household lookups over HTTP, including the
// duplicate-household report.
package handler

import (
	"errors"
	"net/http"

	"agencyhub_backend/internal/household/repository"
	"agencyhub_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/households/duplicates", h.ListDuplicates)
	rg.GET("/households/:id", h.GetHousehold)
}

// ListDuplicates surfaces households sharing a match key. Fuzzy matching can
// create these across uploads; they are reported for manual review, never
// merged automatically.
func (h *Handler) ListDuplicates(c *gin.Context) {
	agencyID, err := uuid.Parse(c.Query("agencyId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "agencyId query parameter is required", nil)
		return
	}

	groups, err := h.repo.ListDuplicates(c.Request.Context(), agencyID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"duplicates": groups})
}

func (h *Handler) GetHousehold(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid household id", nil)
		return
	}

	agencyID, err := uuid.Parse(c.Query("agencyId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "agencyId query parameter is required", nil)
		return
	}

	row, err := h.repo.GetByID(c.Request.Context(), id, agencyID)
	if errors.Is(err, repository.ErrNotFound) {
		httpkit.Error(c, http.StatusNotFound, "household not found", nil)
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, row)
}
