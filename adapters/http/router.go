package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/learnerhub/pkg/logger"
)

type Handlers struct {
	Users      *UserHandler
	Profiles   *ProfileHandler
	Skills     *TagHandler
	Interests  *TagHandler
	Objectives *ObjectiveHandler
}

// NewRouter mounts the user service API. serviceName labels the request spans.
func NewRouter(h Handlers, serviceName string, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(AccessLog(log))
	router.Use(ErrorMiddleware(log))

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("", h.Users.CreateUser)
			users.POST("/create", h.Users.CreateUser)
			users.GET("", h.Users.ListUsers)
			users.GET("/email", h.Users.GetUserByEmail)
			users.GET("/keycloak", h.Users.GetUserByKeycloakID)
			users.GET("/username/:username", h.Users.GetUserByUsername)
			users.GET("/skills/:skillName", h.Users.ListUsersBySkill)
			users.GET("/interests/:interestName", h.Users.ListUsersByInterest)
			users.GET("/:id", h.Users.GetUser)
			users.PUT("/:id", h.Users.UpdateUser)
			users.DELETE("/:id", h.Users.DeleteUser)
			users.POST("/:id/profile-picture", h.Users.UploadProfilePicture)

			profile := users.Group("/profile")
			{
				profile.PUT("/personal-info", h.Profiles.UpdatePersonalInfo)
				profile.PUT("/interests", h.Profiles.UpdateInterests)
				profile.PUT("/objectives", h.Profiles.UpdateLearningObjectives)
				profile.GET("/completion", h.Profiles.GetCompletionStatus)
			}
		}

		mountTags(api.Group("/skills"), h.Skills)
		mountTags(api.Group("/interests"), h.Interests)

		objectives := api.Group("/objectives")
		{
			objectives.GET("/search", h.Objectives.Search)
			objectives.GET("/user/:userId", h.Objectives.ListForUser)
			objectives.POST("/user/:userId", h.Objectives.AddForUser)
			objectives.PUT("/user/:userId/objective/:objectiveId", h.Objectives.UpdateForUser)
			objectives.DELETE("/user/:userId/objective/:objectiveId", h.Objectives.DeleteForUser)
			objectives.PUT("/:id/progress", h.Objectives.UpdateProgress)
		}
	}

	return router
}

func mountTags(g *gin.RouterGroup, h *TagHandler) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
