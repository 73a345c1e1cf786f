package handlers

import (
	"errors"
	"net/http"
	"strings"

	"decorbook/models"
	"decorbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the domain error taxonomy onto HTTP. failMsg is the
// message used for infrastructure failures; their cause is only echoed when
// exposeCause is set.
func respondError(c *gin.Context, logger *zap.Logger, err error, failMsg string, exposeCause bool) {
	var (
		verr *models.ValidationError
		cerr *models.ConflictError
		nerr *models.NotFoundError
		terr *models.IllegalTransitionError
	)
	switch {
	case errors.As(err, &verr):
		utils.JSONError(c, logger, http.StatusBadRequest, utils.ErrorResponse{
			Message: verr.Msg,
			Code:    "validation",
			Details: verr.Field,
		})
	case errors.As(err, &terr):
		utils.JSONError(c, logger, http.StatusBadRequest, utils.ErrorResponse{
			Message: terr.Error(),
			Code:    "illegal_transition",
			Details: transitionHint(terr.From),
		})
	case errors.As(err, &nerr):
		utils.JSONError(c, logger, http.StatusNotFound, utils.ErrorResponse{
			Message: notFoundMessage(nerr.Resource),
			Code:    "not_found",
		})
	case errors.As(err, &cerr):
		utils.JSONError(c, logger, http.StatusConflict, utils.ErrorResponse{
			Message: cerr.Error(),
			Code:    "conflict",
		})
	default:
		resp := utils.ErrorResponse{Message: failMsg, Code: "internal", Error: "Internal server error"}
		if exposeCause {
			resp.Error = err.Error()
		}
		logger.Error(failMsg, zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
	}
}

// respondSubmitError answers form submissions; their validation failures
// carry the rule message in details.
func respondSubmitError(c *gin.Context, logger *zap.Logger, err error, failMsg string, exposeCause bool) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		utils.JSONError(c, logger, http.StatusBadRequest, utils.ErrorResponse{
			Message: "Validation error",
			Code:    "validation",
			Details: verr.Msg,
		})
		return
	}
	respondError(c, logger, err, failMsg, exposeCause)
}

func notFoundMessage(resource string) string {
	if resource == "" {
		return "Not found"
	}
	return strings.ToUpper(resource[:1]) + resource[1:] + " not found"
}

// transitionHint tells the caller where a booking in from can still go.
func transitionHint(from models.BookingStatus) string {
	if from.IsTerminal() {
		return "booking is already " + string(from)
	}
	next := from.AllowedTransitions()
	if len(next) == 0 {
		return ""
	}
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = string(s)
	}
	return "allowed: " + strings.Join(names, ", ")
}

// bindError answers a body that could not be decoded at all. The decoder's
// message names Go types, so it is only echoed when exposeCause is set.
func bindError(c *gin.Context, logger *zap.Logger, err error, exposeCause bool) {
	resp := utils.ErrorResponse{
		Message: "Validation error",
		Code:    "validation",
		Details: "Request body must be valid JSON with the expected field types",
	}
	if exposeCause {
		resp.Error = err.Error()
	}
	utils.JSONError(c, logger, http.StatusBadRequest, resp)
}
