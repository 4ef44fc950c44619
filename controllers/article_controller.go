package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/inkwell/store"
	"github.com/cppla/inkwell/utils"
)

// ArticleController exposes article creation and listing over JSON.
type ArticleController struct {
	repo Repository
}

// NewArticleController creates a new ArticleController instance.
func NewArticleController(repo Repository) *ArticleController {
	return &ArticleController{repo: repo}
}

// CreateArticles inserts a batch of articles atomically.
func (a *ArticleController) CreateArticles(ctx *gin.Context) {
	var req struct {
		Articles []struct {
			Title    string `json:"title"`
			Content  string `json:"content"`
			AuthorID *uint  `json:"author_id"`
		} `json:"articles" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	items := make([]store.NewArticle, 0, len(req.Articles))
	for _, it := range req.Articles {
		items = append(items, store.NewArticle{Title: it.Title, Content: it.Content, AuthorID: it.AuthorID})
	}
	ids, err := a.repo.CreateArticles(ctx.Request.Context(), items)
	if err != nil {
		respondStoreError(ctx, err, "failed to create articles")
		return
	}
	utils.Created(ctx, gin.H{"ids": ids})
}

// ListUserArticles returns the articles written by one user, oldest first.
func (a *ArticleController) ListUserArticles(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid user id")
		return
	}
	rc := ctx.Request.Context()
	if _, err := a.repo.GetUserByID(rc, id); err != nil {
		respondStoreError(ctx, err, "failed to get user")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	articles, err := a.repo.GetArticlesByAuthor(rc, id, store.Page{Number: page, Size: pageSize})
	if err != nil {
		respondStoreError(ctx, err, "failed to list articles")
		return
	}
	utils.Success(ctx, paginationPayload(articles, page, pageSize))
}
