package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/annoylog/backend/internal/application/usecase/stats"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
)

// StatsController handles streak, calendar and insights endpoints.
type StatsController struct {
	streakUseCase   *stats.GetStreakUseCase
	calendarUseCase *stats.GetCalendarUseCase
	insightsUseCase *stats.GetInsightsUseCase
}

// NewStatsController creates a new stats controller instance.
func NewStatsController(
	streakUseCase *stats.GetStreakUseCase,
	calendarUseCase *stats.GetCalendarUseCase,
	insightsUseCase *stats.GetInsightsUseCase,
) *StatsController {
	return &StatsController{
		streakUseCase:   streakUseCase,
		calendarUseCase: calendarUseCase,
		insightsUseCase: insightsUseCase,
	}
}

// Streak handles GET /stats/streak requests.
func (c *StatsController) Streak(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	output, err := c.streakUseCase.Execute(ctx.Request.Context(), stats.GetStreakInput{
		UserID:   userID,
		Timezone: ctx.Query("tz"),
	})
	if err != nil {
		c.handleStatsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToStreakResponse(output))
}

// Calendar handles GET /stats/calendar?month=YYYY-MM requests.
func (c *StatsController) Calendar(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	output, err := c.calendarUseCase.Execute(ctx.Request.Context(), stats.GetCalendarInput{
		UserID:   userID,
		Month:    ctx.Query("month"),
		Timezone: ctx.Query("tz"),
	})
	if err != nil {
		c.handleStatsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCalendarResponse(output))
}

// Insights handles GET /stats/insights?days=N requests. Mounted behind the Pro gate.
func (c *StatsController) Insights(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	input := stats.GetInsightsInput{UserID: userID, Timezone: ctx.Query("tz")}
	if raw := ctx.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "days must be a number",
				Code:  string(domainerror.ErrCodeInvalidPeriodDays),
			})
			return
		}
		input.Days = days
	}

	output, err := c.insightsUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleStatsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToInsightsResponse(output))
}

func (c *StatsController) handleStatsError(ctx *gin.Context, err error) {
	if writeCoded(ctx, err, func(domainerror.StatsErrorCode) int { return http.StatusBadRequest }) {
		return
	}
	if errors.Is(err, domainerror.ErrUserNotFound) {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "User not found",
			Code:  string(domainerror.ErrCodeUserNotFound),
		})
		return
	}
	internalError(ctx, "Stats request", err)
}
