package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/usecase/entry"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
)

// EntryController handles journal entry endpoints.
type EntryController struct {
	createUseCase *entry.CreateEntryUseCase
	listUseCase   *entry.ListEntriesUseCase
	updateUseCase *entry.UpdateEntryUseCase
	deleteUseCase *entry.DeleteEntryUseCase
	now           func() time.Time
}

// NewEntryController creates a new entry controller instance.
func NewEntryController(
	createUseCase *entry.CreateEntryUseCase,
	listUseCase *entry.ListEntriesUseCase,
	updateUseCase *entry.UpdateEntryUseCase,
	deleteUseCase *entry.DeleteEntryUseCase,
) *EntryController {
	return &EntryController{
		createUseCase: createUseCase,
		listUseCase:   listUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		now:           time.Now,
	}
}

// Create handles POST /entries requests.
func (c *EntryController) Create(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	req, ok := bindBody[dto.CreateEntryRequest](ctx, domainerror.ErrCodeEntryTextRequired)
	if !ok {
		return
	}

	input := entry.CreateEntryInput{
		UserID: userID,
		Text:   req.Text,
		Rating: req.Rating,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			c.invalidCategoryID(ctx)
			return
		}
		input.CategoryID = &id
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleEntryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToEntryResponse(output.Entry, output.Category, c.now()))
}

// List handles GET /entries requests.
// Query: from, to (RFC3339 or YYYY-MM-DD), category_id, limit, offset.
func (c *EntryController) List(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	input := entry.ListEntriesInput{UserID: userID}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &input.From}, {"to", &input.To}} {
		raw := ctx.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := parseTimeParam(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid " + p.name + " parameter",
				Code:  string(domainerror.ErrCodeInvalidEntryDateRange),
			})
			return
		}
		*p.dst = &t
	}

	if raw := ctx.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.invalidCategoryID(ctx)
			return
		}
		input.CategoryID = &id
	}
	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			input.Limit = n
		}
	}
	if raw := ctx.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			input.Offset = n
		}
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleEntryError(ctx, err)
		return
	}

	now := c.now()
	resp := dto.EntryListResponse{
		Entries: make([]dto.EntryResponse, 0, len(output.Entries)),
		Total:   output.Total,
		Limit:   output.Limit,
		Offset:  output.Offset,
	}
	for _, e := range output.Entries {
		resp.Entries = append(resp.Entries, dto.ToEntryResponse(e, nil, now))
	}
	ctx.JSON(http.StatusOK, resp)
}

// Update handles PATCH /entries/:id requests. Entries older than 72 hours are locked.
func (c *EntryController) Update(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	entryID, ok := pathID(ctx, "entry")
	if !ok {
		return
	}

	req, ok := bindBody[dto.UpdateEntryRequest](ctx, "")
	if !ok {
		return
	}

	input := entry.UpdateEntryInput{
		EntryID: entryID,
		UserID:  userID,
		Text:    req.Text,
		Rating:  req.Rating,
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			input.ClearCategory = true
		} else {
			id, err := uuid.Parse(*req.CategoryID)
			if err != nil {
				c.invalidCategoryID(ctx)
				return
			}
			input.CategoryID = &id
		}
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleEntryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToEntryResponse(output.Entry, output.Category, c.now()))
}

// Delete handles DELETE /entries/:id requests.
func (c *EntryController) Delete(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	entryID, ok := pathID(ctx, "entry")
	if !ok {
		return
	}

	if err := c.deleteUseCase.Execute(ctx.Request.Context(), entry.DeleteEntryInput{
		EntryID: entryID,
		UserID:  userID,
	}); err != nil {
		c.handleEntryError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *EntryController) invalidCategoryID(ctx *gin.Context) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid category ID format",
		Code:  string(domainerror.ErrCodeEntryCategoryNotFound),
	})
}

func (c *EntryController) handleEntryError(ctx *gin.Context, err error) {
	if !writeCoded(ctx, err, entryErrorStatus) {
		internalError(ctx, "Entry request", err)
	}
}

// entryErrorStatus maps entry error codes to HTTP status codes.
func entryErrorStatus(code domainerror.EntryErrorCode) int {
	switch code {
	case domainerror.ErrCodeEntryTextRequired,
		domainerror.ErrCodeEntryTextTooLong,
		domainerror.ErrCodeInvalidRating,
		domainerror.ErrCodeEntryCategoryNotFound,
		domainerror.ErrCodeInvalidEntryDateRange:
		return http.StatusBadRequest
	case domainerror.ErrCodeEntryLocked:
		return http.StatusConflict
	case domainerror.ErrCodeEntryNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeNotAuthorizedEntry:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// parseTimeParam accepts RFC3339 timestamps and plain UTC dates.
func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
