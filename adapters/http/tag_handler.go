package http

import (
	"github.com/gin-gonic/gin"

	tagUC "github.com/khoahotran/learnerhub/internal/application/usecase/tag"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

// TagHandler serves one tag kind. The router mounts one instance for skills and
// one for interests.
type TagHandler struct {
	useCase *tagUC.TagUseCase
	logger  logger.Logger
}

func NewTagHandler(uc *tagUC.TagUseCase, log logger.Logger) *TagHandler {
	return &TagHandler{useCase: uc, logger: log}
}

func (h *TagHandler) input(req TagRequest) tagUC.TagInput {
	return tagUC.TagInput{
		Name:         req.Name,
		Category:     req.Category,
		IsPredefined: req.IsPredefined,
		Level:        req.Level,
	}
}

func (h *TagHandler) Create(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for "+h.useCase.Kind().String(), err))
		return
	}
	t, err := h.useCase.CreateTag(c.Request.Context(), h.input(req))
	if err != nil {
		c.Error(err)
		return
	}
	respondCreated(c, ToTagDTO(*t))
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.useCase.ListTags(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToTagDTOs(tags))
}

func (h *TagHandler) Search(c *gin.Context) {
	tags, err := h.useCase.SearchTags(c.Request.Context(), c.Query("name"))
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToTagDTOs(tags))
}

func (h *TagHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"), h.useCase.Kind().String())
	if err != nil {
		c.Error(err)
		return
	}
	t, err := h.useCase.GetTag(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToTagDTO(*t))
}

func (h *TagHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"), h.useCase.Kind().String())
	if err != nil {
		c.Error(err)
		return
	}
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for "+h.useCase.Kind().String(), err))
		return
	}
	t, err := h.useCase.UpdateTag(c.Request.Context(), id, h.input(req))
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToTagDTO(*t))
}

func (h *TagHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"), h.useCase.Kind().String())
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.useCase.DeleteTag(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	respondOK(c, nil)
}
