// Package handler exposes derived lifecycle stages over HTTP.
package handler

import (
	"net/http"
	"strings"

	"agencyhub_backend/internal/lifecycle"
	"agencyhub_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	projector *lifecycle.Projector
}

func New(projector *lifecycle.Projector) *Handler {
	return &Handler{projector: projector}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/contacts/stages", h.GetStages)
	rg.GET("/contacts/:id/stage", h.GetStage)
}

type stageResponse struct {
	ContactID string          `json:"contactId"`
	Stage     lifecycle.Stage `json:"stage"`
}

// GetStage derives the current lifecycle stage for one contact.
func (h *Handler) GetStage(c *gin.Context) {
	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid contact id", nil)
		return
	}

	agencyID, err := uuid.Parse(c.Query("agencyId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "agencyId query parameter is required", nil)
		return
	}

	stage, err := h.projector.StageFor(c.Request.Context(), agencyID, contactID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stageResponse{ContactID: contactID.String(), Stage: stage})
}

// GetStages derives stages for a contact batch, for annotating list views
// with one round of queries instead of one per row.
func (h *Handler) GetStages(c *gin.Context) {
	agencyID, err := uuid.Parse(c.Query("agencyId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "agencyId query parameter is required", nil)
		return
	}

	var contactIDs []uuid.UUID
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid contact id: "+raw, nil)
			return
		}
		contactIDs = append(contactIDs, id)
	}
	if len(contactIDs) == 0 {
		httpkit.Error(c, http.StatusBadRequest, "ids query parameter is required", nil)
		return
	}

	stages, err := h.projector.StagesFor(c.Request.Context(), agencyID, contactIDs)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]stageResponse, 0, len(contactIDs))
	for _, id := range contactIDs {
		out = append(out, stageResponse{ContactID: id.String(), Stage: stages[id]})
	}
	httpkit.OK(c, gin.H{"stages": out})
}
