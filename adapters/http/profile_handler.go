package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	profileUC "github.com/khoahotran/learnerhub/internal/application/usecase/profile"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

// ProfileHandler serves the three completion steps. The user is named by the
// userId query parameter.
type ProfileHandler struct {
	useCase *profileUC.CompletionUseCase
	logger  logger.Logger
}

func NewProfileHandler(uc *profileUC.CompletionUseCase, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{useCase: uc, logger: log}
}

func userIDFromQuery(c *gin.Context) (uuid.UUID, error) {
	raw := c.Query("userId")
	if raw == "" {
		return uuid.Nil, apperror.NewInvalidInput("query parameter 'userId' is required", nil)
	}
	return parseID(raw, "user")
}

func (h *ProfileHandler) UpdatePersonalInfo(c *gin.Context) {
	userID, err := userIDFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req PersonalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for personal info", err))
		return
	}

	view, err := h.useCase.UpdatePersonalInfo(c.Request.Context(), userID, req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTO(view))
}

func (h *ProfileHandler) UpdateInterests(c *gin.Context) {
	userID, err := userIDFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req []TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for interests", err))
		return
	}
	descriptors, err := ToDescriptors(req)
	if err != nil {
		c.Error(err)
		return
	}

	view, err := h.useCase.UpdateInterests(c.Request.Context(), userID, descriptors)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTO(view))
}

func (h *ProfileHandler) UpdateLearningObjectives(c *gin.Context) {
	userID, err := userIDFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req []ObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for learning objectives", err))
		return
	}
	inputs, err := ToObjectiveInputs(req)
	if err != nil {
		c.Error(err)
		return
	}

	view, err := h.useCase.UpdateLearningObjectives(c.Request.Context(), userID, inputs)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTO(view))
}

func (h *ProfileHandler) GetCompletionStatus(c *gin.Context) {
	userID, err := userIDFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	status, err := h.useCase.GetCompletionStatus(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, string(status))
}
