package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"agrocommunity_backend/internal/dto"
	"agrocommunity_backend/internal/services"
	"agrocommunity_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	*BaseHandler
	postService services.PostService
	maxUpload   int64
}

func NewPostHandler(base *BaseHandler, postService services.PostService, maxUpload int64) *PostHandler {
	return &PostHandler{
		BaseHandler: base,
		postService: postService,
		maxUpload:   maxUpload,
	}
}

// RegisterRoutes expects rg to be behind the session middleware.
func (h *PostHandler) RegisterRoutes(rg *gin.RouterGroup) {
	posts := rg.Group("/post")
	{
		posts.POST("/addpost", h.Create)
		posts.GET("/all", h.List)
		posts.GET("/userpost/all", h.ListMine)
		posts.GET("/:id/like", h.Like)
		posts.GET("/:id/dislike", h.Dislike)
		posts.GET("/:id/bookmark", h.Bookmark)
		posts.POST("/:id/comment", h.Comment)
		posts.GET("/:id/comment/all", h.Comments)
		posts.POST("/:id/comment/all", h.Comments)
		posts.DELETE("/delete/:id", h.Delete)
	}
}

func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !h.BindAndValidate_Form(c, &req) {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			apperrors.HandleError(c, apperrors.ErrImageRequired)
			return
		}
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid multipart form"))
		return
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		apperrors.HandleError(c, apperrors.NewBadRequestError(
			fmt.Sprintf("Image exceeds the %d byte limit", h.maxUpload)))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	post, err := h.postService.Create(c.Request.Context(), userID, req.Caption, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "New post added",
		"post":    post,
	})
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.postService.List(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts})
}

func (h *PostHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	posts, err := h.postService.ListByAuthor(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts})
}

func (h *PostHandler) Like(c *gin.Context) {
	userID, postID, ok := h.userAndPost(c)
	if !ok {
		return
	}

	post, err := h.postService.Like(c.Request.Context(), userID, postID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post liked", "post": post})
}

func (h *PostHandler) Dislike(c *gin.Context) {
	userID, postID, ok := h.userAndPost(c)
	if !ok {
		return
	}

	post, err := h.postService.Dislike(c.Request.Context(), userID, postID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post disliked", "post": post})
}

func (h *PostHandler) Comment(c *gin.Context) {
	userID, postID, ok := h.userAndPost(c)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	comment, err := h.postService.Comment(c.Request.Context(), userID, postID, req.Text)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Comment Added", "comment": comment})
}

func (h *PostHandler) Comments(c *gin.Context) {
	postID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.postService.Comments(c.Request.Context(), postID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comments": comments})
}

func (h *PostHandler) Delete(c *gin.Context) {
	userID, postID, ok := h.userAndPost(c)
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), userID, postID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted successfully"})
}

func (h *PostHandler) Bookmark(c *gin.Context) {
	userID, postID, ok := h.userAndPost(c)
	if !ok {
		return
	}

	saved, err := h.postService.ToggleBookmark(c.Request.Context(), userID, postID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp := dto.BookmarkResponse{Success: true, Type: "unsaved", Message: "Post removed from bookmarks"}
	if saved {
		resp.Type = "saved"
		resp.Message = "Post bookmarked successfully"
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PostHandler) userAndPost(c *gin.Context) (string, string, bool) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return "", "", false
	}
	postID, ok := ParseIDParam(c, "id")
	if !ok {
		return "", "", false
	}
	return userID, postID, true
}
