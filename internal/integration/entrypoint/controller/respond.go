package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/entrypoint/dto"
)

// writeCoded answers with the first error of code type C found in err's
// chain and reports whether it did.
func writeCoded[C ~string](ctx *gin.Context, err error, status func(C) int) bool {
	var coded *domainerror.CodedError[C]
	if !errors.As(err, &coded) {
		return false
	}
	ctx.JSON(status(coded.Code), dto.ErrorResponse{
		Error: coded.Message,
		Code:  string(coded.Code),
	})
	return true
}

// internalError logs err under what and hides it from the client.
func internalError(ctx *gin.Context, what string, err error) {
	slog.Error(what+" failed", "error", err, "path", ctx.FullPath())
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// bindBody decodes the JSON body into a T. A body that does not bind is
// answered with 400 and code, and ok is false.
func bindBody[T any, C ~string](ctx *gin.Context, code C) (req T, ok bool) {
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(code),
		})
		return req, false
	}
	return req, true
}

// pathID parses the :id segment; what names the resource in the 400 message.
func pathID(ctx *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid " + what + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}
