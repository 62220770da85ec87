package http

import (
	"github.com/gin-gonic/gin"

	userUC "github.com/khoahotran/learnerhub/internal/application/usecase/user"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type UserHandler struct {
	useCase *userUC.UserUseCase
	logger  logger.Logger
}

func NewUserHandler(uc *userUC.UserUseCase, log logger.Logger) *UserHandler {
	return &UserHandler{useCase: uc, logger: log}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for user creation", err))
		return
	}
	input, err := req.ToInput()
	if err != nil {
		c.Error(err)
		return
	}

	view, err := h.useCase.Register(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	respondCreated(c, ToUserProfileDTO(view))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	views, err := h.useCase.ListUsers(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTOs(views))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parseID(c.Param("id"), "user")
	if err != nil {
		c.Error(err)
		return
	}
	view, err := h.useCase.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTO(view))
}

func (h *UserHandler) GetUserByUsername(c *gin.Context) {
	view, err := h.useCase.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTO(view))
}

func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.Error(apperror.NewInvalidInput("query parameter 'email' is required", nil))
		return
	}
	view, err := h.useCase.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTO(view))
}

func (h *UserHandler) GetUserByKeycloakID(c *gin.Context) {
	keycloakID := c.Query("keycloakId")
	if keycloakID == "" {
		c.Error(apperror.NewInvalidInput("query parameter 'keycloakId' is required", nil))
		return
	}
	view, err := h.useCase.GetByKeycloakID(c.Request.Context(), keycloakID)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTO(view))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := parseID(c.Param("id"), "user")
	if err != nil {
		c.Error(err)
		return
	}
	var req UserProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for user update", err))
		return
	}
	input, err := req.ToInput()
	if err != nil {
		c.Error(err)
		return
	}

	view, err := h.useCase.UpdateUser(c.Request.Context(), id, input)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTO(view))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := parseID(c.Param("id"), "user")
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.useCase.DeleteUser(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	respondOK(c, nil)
}

func (h *UserHandler) ListUsersBySkill(c *gin.Context) {
	views, err := h.useCase.FindBySkillName(c.Request.Context(), c.Param("skillName"))
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTOs(views))
}

func (h *UserHandler) ListUsersByInterest(c *gin.Context) {
	views, err := h.useCase.FindByInterestName(c.Request.Context(), c.Param("interestName"))
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTOs(views))
}

func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	id, err := parseID(c.Param("id"), "user")
	if err != nil {
		c.Error(err)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("multipart field 'file' is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open uploaded file", err))
		return
	}
	defer file.Close()

	view, err := h.useCase.UploadProfilePicture(c.Request.Context(), id, file)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, ToUserProfileDTO(view))
}
