package handler

import (
	"AmineForum/internal/api/dto"
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/response"
	"AmineForum/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

func (s *PostHandler) GetCategories(c *gin.Context) {
	response.Success(c, s.postSvc.Categories())
}

// ListPosts category 为空或"全部"时返回全部帖子
func (s *PostHandler) ListPosts(c *gin.Context) {
	var query dto.PostListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	posts, err := s.postSvc.LoadByCategory(c.Request.Context(), query.Category, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) GetPost(c *gin.Context) {
	post, err := s.postSvc.LoadPostContent(c.Request.Context(), c.Param("post_id"), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if post == nil {
		response.Error(c, service.ErrPostNotFound)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) CreatePost(c *gin.Context) {
	s.upsert(c, "")
}

func (s *PostHandler) UpdatePost(c *gin.Context) {
	s.upsert(c, c.Param("post_id"))
}

func (s *PostHandler) upsert(c *gin.Context, postID string) {
	var req dto.PostUpsertDTO
	if !bindJSON(c, &req) {
		return
	}

	post := &model.Post{}
	if err := copier.Copy(post, &req); err != nil {
		response.Error(c, err)
		return
	}
	if postID != "" {
		post.ID = postID
	}

	saved, err := s.postSvc.Upsert(c.Request.Context(), currentUser(c), post)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, saved)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	if err := s.postSvc.MarkDeleted(c.Request.Context(), currentUser(c), c.Param("post_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) PinPost(c *gin.Context) {
	var req dto.PinDTO
	if !bindJSON(c, &req) {
		return
	}

	if err := s.postSvc.SetPinned(c.Request.Context(), currentUser(c), c.Param("post_id"), req.Pinned); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RefreshCache 手动触发静态内容同步
func (s *PostHandler) RefreshCache(c *gin.Context) {
	n, err := s.postSvc.RefreshCache(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}
