package admin

import (
	"errors"
	"math"

	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/service"

	"github.com/gin-gonic/gin"
)

// GetActiveGiveaway 当前进行中的抽奖，无则 data 为 null
func (h *Handler) GetActiveGiveaway(c *gin.Context) {
	status, err := h.GiveawayService.Active()
	if err != nil {
		if errors.Is(err, service.ErrNoActiveGiveaway) {
			response.Success(c, nil)
			return
		}
		respondWithMappedError(c, err, giveawayErrorRules, "error.internal")
		return
	}
	response.Success(c, gin.H{
		"giveaway":          status.Giveaway,
		"participants":      status.Participants,
		"remaining_seconds": int64(math.Ceil(status.Remaining.Seconds())),
	})
}

// StartGiveawayRequest 发起抽奖请求
type StartGiveawayRequest struct {
	Platform string `json:"platform" binding:"required"`
	Duration string `json:"duration" binding:"required"`
	Winners  int    `json:"winners" binding:"required"`
}

// StartGiveaway 发起抽奖，已有进行中的抽奖会被取消并通知参与者
func (h *Handler) StartGiveaway(c *gin.Context) {
	var req StartGiveawayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	giveaway, err := h.GiveawayService.Start(service.StartGiveawayInput{
		Platform: req.Platform,
		Duration: req.Duration,
		Winners:  req.Winners,
	})
	if err != nil {
		respondWithMappedError(c, err, giveawayErrorRules, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_giveaway_started",
		"operator", operatorName(c),
		"giveaway_id", giveaway.ID,
		"platform", req.Platform,
	)
	response.Success(c, giveaway)
}

// StopGiveaway 取消指定抽奖
func (h *Handler) StopGiveaway(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	giveaway, err := h.GiveawayService.Stop(id)
	if err != nil {
		respondWithMappedError(c, err, giveawayErrorRules, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_giveaway_stopped", "operator", operatorName(c), "giveaway_id", giveaway.ID)
	response.Success(c, giveaway)
}
