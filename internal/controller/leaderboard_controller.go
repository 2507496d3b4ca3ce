package controller

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// GetLeaderboard godoc
// @Summary 排行榜
// @Description 按分数降序、同分同名次的排名。timeRange 取值 week|month|year|all。
// @Tags 排行榜
// @Produce  json
// @Security ApiKeyAuth
// @Param   contentType query string true "内容类型 test|assignment"
// @Param   contentId query int false "内容ID，缺省时跨内容汇总"
// @Param   timeRange query string false "时间范围，默认 all"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "成功"
// @Failure 400 {object} util.Response "时间范围不合法"
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	contentType := model.ContentType(ctx.Query("contentType"))
	timeRange := ctx.DefaultQuery("timeRange", service.RangeAll)

	var contentID uint
	if raw := ctx.Query("contentId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "无效的 contentId 参数")
			return
		}
		contentID = uint(id)
	}

	entries, err := c.LeaderboardService.GetLeaderboard(contentType, contentID, timeRange)
	if err != nil {
		if errors.Is(err, util.ErrInvalidTimeRange) {
			util.BadRequest(ctx, "时间范围不合法，可选 week|month|year|all")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, entries)
}
