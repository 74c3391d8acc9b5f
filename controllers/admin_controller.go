package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/movefit/streakd/models"
	"github.com/movefit/streakd/repository"
	"github.com/movefit/streakd/utils"
)

// AdminController manages milestone reference data. All routes require the
// service key.
type AdminController struct {
	milestones repository.MilestoneRepository
	namePolicy *bluemonday.Policy
	descPolicy *bluemonday.Policy
}

// NewAdminController creates a new controller instance.
func NewAdminController(milestones repository.MilestoneRepository) *AdminController {
	return &AdminController{
		milestones: milestones,
		namePolicy: bluemonday.StrictPolicy(),
		descPolicy: bluemonday.UGCPolicy(),
	}
}

type milestoneRequest struct {
	DayNumber      int             `json:"day_number" binding:"required,min=1"`
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	RewardType     string          `json:"reward_type" binding:"required"`
	RewardValue    json.RawMessage `json:"reward_value"`
	IsRepeatable   bool            `json:"is_repeatable"`
	RepeatInterval *int            `json:"repeat_interval"`
	IsActive       *bool           `json:"is_active"`
}

// CreateMilestone adds a milestone definition.
func (a *AdminController) CreateMilestone(ctx *gin.Context) {
	m, ok := a.bindMilestone(ctx, &models.StreakMilestone{IsActive: true})
	if !ok {
		return
	}
	if err := a.milestones.Create(ctx, m); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create milestone")
		return
	}
	utils.Success(ctx, m)
}

// UpdateMilestone replaces an existing milestone definition.
func (a *AdminController) UpdateMilestone(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid milestone id")
		return
	}

	existing, err := a.milestones.GetByID(ctx, uint(id))
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40421, "milestone not found")
		return
	}

	m, ok := a.bindMilestone(ctx, existing)
	if !ok {
		return
	}
	if err := a.milestones.Update(ctx, m); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to update milestone")
		return
	}
	utils.Success(ctx, m)
}

// bindMilestone validates the request and fills the model, sanitizing
// admin-supplied text before it can reach any client.
func (a *AdminController) bindMilestone(ctx *gin.Context, m *models.StreakMilestone) (*models.StreakMilestone, bool) {
	var req milestoneRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request body")
		return nil, false
	}

	if !validRewardType(req.RewardType) {
		utils.Error(ctx, http.StatusBadRequest, 40010, "unknown reward_type")
		return nil, false
	}
	if req.IsRepeatable && (req.RepeatInterval == nil || *req.RepeatInterval < 1) {
		utils.Error(ctx, http.StatusBadRequest, 40011, "repeat_interval is required for repeatable milestones")
		return nil, false
	}
	if len(req.RewardValue) > 0 && !json.Valid(req.RewardValue) {
		utils.Error(ctx, http.StatusBadRequest, 40012, "reward_value must be valid JSON")
		return nil, false
	}

	m.DayNumber = req.DayNumber
	m.Name = a.namePolicy.Sanitize(req.Name)
	m.Description = a.descPolicy.Sanitize(req.Description)
	m.RewardType = req.RewardType
	m.RewardValue = req.RewardValue
	m.IsRepeatable = req.IsRepeatable
	m.RepeatInterval = req.RepeatInterval
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	return m, true
}

func validRewardType(t string) bool {
	for _, v := range models.ValidRewardTypes {
		if v == t {
			return true
		}
	}
	return false
}
