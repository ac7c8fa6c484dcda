package routes

import (
	"github.com/classring/classring-backend/internal/handler"
	"github.com/classring/classring-backend/internal/middleware"
	"github.com/classring/classring-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures the messaging API routes
func Setup(
	router *gin.Engine,
	threadHandler *handler.ThreadHandler,
	itemHandler *handler.ItemHandler,
	recipientHandler *handler.RecipientHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtManager))

	// Recipient directory
	api.GET("/recipients", recipientHandler.ListRecipients)

	// Threads
	threads := api.Group("/threads")
	threads.POST("", threadHandler.CreateThread)
	threads.GET("", threadHandler.ListThreads)
	threads.GET("/unread-count", threadHandler.UnreadCount)
	threads.DELETE("/:id", threadHandler.DeleteThread)

	// Items (nested under threads)
	threads.POST("/:id/items", itemHandler.PostItem)
	threads.GET("/:id/items", itemHandler.ListItems)

	// Group membership
	threads.POST("/:id/participants", threadHandler.AddParticipant)
	threads.DELETE("/:id/participants/:user_id", threadHandler.RemoveParticipant)
}
