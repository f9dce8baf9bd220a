package handlers

import (
	"net/http"

	"agrocommunity_backend/internal/dto"
	"agrocommunity_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	*BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(base *BaseHandler, messageService services.MessageService) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    base,
		messageService: messageService,
	}
}

// RegisterRoutes expects rg to be behind the session middleware.
func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	community := rg.Group("/community")
	{
		community.POST("/send/:id", h.Send)
		community.GET("/all/:id", h.List)
	}
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	receiverID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	message, err := h.messageService.DeliverMessage(c.Request.Context(), userID, receiverID, req.TextMessage)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "newMessage": message})
}

func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	otherID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	messages, err := h.messageService.GetMessages(c.Request.Context(), userID, otherID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}
