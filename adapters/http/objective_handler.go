package http

import (
	"github.com/gin-gonic/gin"

	objectiveUC "github.com/khoahotran/learnerhub/internal/application/usecase/objective"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type ObjectiveHandler struct {
	useCase *objectiveUC.ObjectiveUseCase
	logger  logger.Logger
}

func NewObjectiveHandler(uc *objectiveUC.ObjectiveUseCase, log logger.Logger) *ObjectiveHandler {
	return &ObjectiveHandler{useCase: uc, logger: log}
}

func (h *ObjectiveHandler) ListForUser(c *gin.Context) {
	userID, err := parseID(c.Param("userId"), "user")
	if err != nil {
		c.Error(err)
		return
	}
	items, err := h.useCase.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToObjectiveDTOs(items))
}

func (h *ObjectiveHandler) AddForUser(c *gin.Context) {
	userID, err := parseID(c.Param("userId"), "user")
	if err != nil {
		c.Error(err)
		return
	}
	var req ObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for learning objective", err))
		return
	}
	in, err := req.ToInput()
	if err != nil {
		c.Error(err)
		return
	}

	items, err := h.useCase.AddForUser(c.Request.Context(), userID, in)
	if err != nil {
		c.Error(err)
		return
	}
	respondCreated(c, ToObjectiveDTOs(items))
}

func (h *ObjectiveHandler) UpdateForUser(c *gin.Context) {
	userID, err := parseID(c.Param("userId"), "user")
	if err != nil {
		c.Error(err)
		return
	}
	objectiveID, err := parseID(c.Param("objectiveId"), "objective")
	if err != nil {
		c.Error(err)
		return
	}
	var req ObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for learning objective", err))
		return
	}
	in, err := req.ToInput()
	if err != nil {
		c.Error(err)
		return
	}

	o, err := h.useCase.UpdateForUser(c.Request.Context(), userID, objectiveID, in)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToObjectiveDTO(*o))
}

func (h *ObjectiveHandler) DeleteForUser(c *gin.Context) {
	userID, err := parseID(c.Param("userId"), "user")
	if err != nil {
		c.Error(err)
		return
	}
	objectiveID, err := parseID(c.Param("objectiveId"), "objective")
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.useCase.DeleteForUser(c.Request.Context(), userID, objectiveID); err != nil {
		c.Error(err)
		return
	}
	respondOK(c, nil)
}

func (h *ObjectiveHandler) UpdateProgress(c *gin.Context) {
	id, err := parseID(c.Param("id"), "objective")
	if err != nil {
		c.Error(err)
		return
	}
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("progressPercentage is required", err))
		return
	}
	o, err := h.useCase.UpdateProgress(c.Request.Context(), id, *req.ProgressPercentage)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToObjectiveDTO(*o))
}

func (h *ObjectiveHandler) Search(c *gin.Context) {
	items, err := h.useCase.Search(c.Request.Context(), c.Query("title"))
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToObjectiveDTOs(items))
}
