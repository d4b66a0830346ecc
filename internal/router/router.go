package router

import (
	"github.com/gin-gonic/gin"

	"LinkUp/internal/handler"
	"LinkUp/internal/middleware"
)

type Handlers struct {
	User         *handler.UserHandler
	Email        *handler.EmailHandler
	Creator      *handler.CreatorHandler
	Post         *handler.PostHandler
	Subscription *handler.SubscriptionHandler
}

func New(h Handlers, verifier middleware.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/healthz", handler.Health)

	api := r.Group("/api")

	// 免登录接口
	users := api.Group("/users")
	{
		users.POST("", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/token/refresh", h.User.TokenRefresh)
		users.POST("/password/code", h.Email.SendResetCode)
		users.POST("/password/reset", h.Email.ResetPassword)
	}

	// 登录态接口，路径中的 userId 必须是本人
	self := users.Group("/:userId")
	self.Use(middleware.AuthMiddleware(verifier), middleware.RequireSelf("userId"))
	{
		self.GET("", h.User.Get)
		self.PUT("", h.User.Update)
		self.DELETE("", h.User.Delete)
		self.POST("/logout", h.User.Logout)

		self.POST("/creators", h.Creator.Create)
		self.GET("/creators", h.Creator.List)
	}

	creator := self.Group("/creators/:creatorId")
	{
		creator.GET("", h.Creator.Get)
		creator.PUT("", h.Creator.Update)
		creator.DELETE("", h.Creator.Delete)

		creator.POST("/posts", h.Post.Create)
		creator.GET("/posts", h.Post.List)
		creator.DELETE("/posts", h.Post.DeleteAll)
		creator.GET("/posts/:postId", h.Post.Get)
		creator.PUT("/posts/:postId", h.Post.Update)
		creator.DELETE("/posts/:postId", h.Post.Delete)

		creator.POST("/subRequests", h.Subscription.RequestFollow)
		creator.GET("/subRequests", h.Subscription.ListRequests)
		creator.PUT("/subRequests/:subRequestId", h.Subscription.ResolveRequest)
		creator.DELETE("/subRequests/:subRequestId", h.Subscription.CancelRequest)

		creator.GET("/subscribers", h.Subscription.ListSubscribers)
		creator.GET("/subscribers/:subscriberId", h.Subscription.GetSubscriber)
		creator.DELETE("/subscribers/:subscriberId", h.Subscription.RevokeAccess)
	}

	return r
}
