package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/movefit/streakd/middleware"
	"github.com/movefit/streakd/services"
	"github.com/movefit/streakd/utils"
)

// StreakController exposes the streak engine over HTTP.
type StreakController struct {
	svc *services.StreakService
}

// NewStreakController creates a new controller instance.
func NewStreakController(svc *services.StreakService) *StreakController {
	return &StreakController{svc: svc}
}

type processRequest struct {
	UserID   uint   `json:"user_id"`
	Timezone string `json:"timezone"`
}

// ProcessDaily runs one streak invocation for the subject user. The subject
// is the authenticated user, or the explicit user_id supplied by a service
// caller (the scheduler batch-processing users).
func (c *StreakController) ProcessDaily(ctx *gin.Context) {
	var req processRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request body")
			return
		}
	}

	subject, ok := c.resolveSubject(ctx, req.UserID)
	if !ok {
		return
	}

	var result *services.ProcessResult
	err := utils.WithUserLock(ctx, subject, func() error {
		var err error
		result, err = c.svc.ProcessDaily(ctx, subject, req.Timezone)
		return err
	})
	if err != nil {
		if errors.Is(err, utils.ErrUserBusy) {
			utils.Error(ctx, http.StatusConflict, 40901, "streak is already being processed")
			return
		}
		if utils.Sugar != nil {
			utils.Sugar.Errorf("streak processing failed user=%d err=%v", subject, err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "streak processing failed")
		return
	}

	utils.Success(ctx, result)
}

// Status returns the subject user's streak snapshot and next milestone.
func (c *StreakController) Status(ctx *gin.Context) {
	subject, ok := c.resolveSubjectFromQuery(ctx)
	if !ok {
		return
	}

	status, err := c.svc.Status(ctx, subject)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load streak status")
		return
	}
	utils.Success(ctx, status)
}

// Milestones returns the milestone catalog plus the subject user's progress.
func (c *StreakController) Milestones(ctx *gin.Context) {
	subject, ok := c.resolveSubjectFromQuery(ctx)
	if !ok {
		return
	}

	overview, err := c.svc.ListMilestones(ctx, subject)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load milestones")
		return
	}
	utils.Success(ctx, overview)
}

// ClaimReward marks a milestone reward as claimed for the authenticated
// user. Already-claimed rewards are a no-op.
func (c *StreakController) ClaimReward(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	milestoneID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || milestoneID == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid milestone id")
		return
	}

	row, err := c.svc.ClaimReward(ctx, userID, uint(milestoneID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMilestoneNotEarned):
			utils.Error(ctx, http.StatusNotFound, 40420, "milestone not earned")
		case errors.Is(err, services.ErrRewardExpired):
			utils.Error(ctx, http.StatusBadRequest, 40031, "reward expired")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to claim reward")
		}
		return
	}

	utils.Success(ctx, row)
}

// resolveSubject picks the user to process: the authenticated user, or the
// explicit id supplied by a service caller. Writes the error response and
// returns false when neither mode is present.
func (c *StreakController) resolveSubject(ctx *gin.Context, explicit uint) (uint, bool) {
	if userID, ok := getUserID(ctx); ok {
		if explicit != 0 && explicit != userID {
			utils.Error(ctx, http.StatusForbidden, 40301, "cannot process another user")
			return 0, false
		}
		return userID, true
	}
	if ctx.GetBool(middleware.ContextServiceCallerKey) {
		if explicit == 0 {
			utils.Error(ctx, http.StatusBadRequest, 40003, "user_id is required for service callers")
			return 0, false
		}
		return explicit, true
	}
	utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	return 0, false
}

// resolveSubjectFromQuery is resolveSubject for GET endpoints, where service
// callers pass ?user_id=.
func (c *StreakController) resolveSubjectFromQuery(ctx *gin.Context) (uint, bool) {
	var explicit uint
	if raw := ctx.Query("user_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40002, "invalid user_id")
			return 0, false
		}
		explicit = uint(parsed)
	}
	return c.resolveSubject(ctx, explicit)
}

func getUserID(ctx *gin.Context) (uint, bool) {
	v, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
