package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, core.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: err.Error()})
	case errors.Is(err, core.ErrEmptyFileList):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty_file_list", Message: err.Error()})
	case errors.Is(err, core.ErrCapabilityMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "capability_mismatch", Message: err.Error()})
	case errors.Is(err, core.ErrPrinterUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "printer_unavailable", Message: err.Error()})
	case errors.Is(err, core.ErrInvalidState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "invalid_state", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}
