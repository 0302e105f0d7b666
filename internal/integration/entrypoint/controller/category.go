package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annoylog/backend/internal/application/usecase/category"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
)

// CategoryController serves the user's own categories. The built-in defaults
// are listed but never stored, so they cannot be edited here.
type CategoryController struct {
	list   *category.ListCategoriesUseCase
	create *category.CreateCategoryUseCase
	update *category.UpdateCategoryUseCase
	remove *category.DeleteCategoryUseCase
}

func NewCategoryController(
	list *category.ListCategoriesUseCase,
	create *category.CreateCategoryUseCase,
	update *category.UpdateCategoryUseCase,
	remove *category.DeleteCategoryUseCase,
) *CategoryController {
	return &CategoryController{list: list, create: create, update: update, remove: remove}
}

// List handles GET /categories requests. Defaults come first.
func (c *CategoryController) List(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	output, err := c.list.Execute(ctx.Request.Context(), category.ListCategoriesInput{UserID: userID})
	if err != nil {
		internalError(ctx, "List categories", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryListResponse(output.Categories))
}

// Create handles POST /categories requests.
func (c *CategoryController) Create(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	req, ok := bindBody[dto.CreateCategoryRequest](ctx, domainerror.ErrCodeMissingCategoryFields)
	if !ok {
		return
	}

	output, err := c.create.Execute(ctx.Request.Context(), category.CreateCategoryInput{
		UserID: userID,
		Name:   req.Name,
		Emoji:  req.Emoji,
		Color:  req.Color,
	})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToCategoryResponse(output.Category))
}

// Update handles PATCH /categories/:id requests.
func (c *CategoryController) Update(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	categoryID, ok := pathID(ctx, "category")
	if !ok {
		return
	}

	req, ok := bindBody[dto.UpdateCategoryRequest](ctx, "")
	if !ok {
		return
	}

	output, err := c.update.Execute(ctx.Request.Context(), category.UpdateCategoryInput{
		CategoryID: categoryID,
		UserID:     userID,
		Name:       req.Name,
		Emoji:      req.Emoji,
		Color:      req.Color,
	})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryResponse(output.Category))
}

// Delete handles DELETE /categories/:id requests.
func (c *CategoryController) Delete(ctx *gin.Context) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	categoryID, ok := pathID(ctx, "category")
	if !ok {
		return
	}

	detached, err := c.remove.Execute(ctx.Request.Context(), category.DeleteCategoryInput{
		CategoryID: categoryID,
		UserID:     userID,
	})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}
	slog.Debug("Category deleted", "categoryID", categoryID, "detachedEntries", detached)

	ctx.Status(http.StatusNoContent)
}

func (c *CategoryController) handleCategoryError(ctx *gin.Context, err error) {
	if !writeCoded(ctx, err, categoryErrorStatus) {
		internalError(ctx, "Category request", err)
	}
}

// categoryErrorStatus maps category error codes to HTTP status codes.
func categoryErrorStatus(code domainerror.CategoryErrorCode) int {
	switch code {
	case domainerror.ErrCodeCategoryNameTooLong,
		domainerror.ErrCodeInvalidColorFormat,
		domainerror.ErrCodeMissingCategoryFields:
		return http.StatusBadRequest
	case domainerror.ErrCodeCategoryNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeCategoryNameExists:
		return http.StatusConflict
	case domainerror.ErrCodeNotAuthorizedCategory,
		domainerror.ErrCodeDefaultCategoryImmutable:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
