package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every error body is {"message": string}; the request id travels in the
// X-Request-Id header, not the body.

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusBadRequest, message)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusUnauthorized, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusNotFound, message)
}

// RespondInternal hides infrastructure detail from the caller; the underlying
// error is logged where it happened.
func RespondInternal(ctx *gin.Context) {
	RespondMessage(ctx, http.StatusInternalServerError, "Server error")
}
