package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/inkwell/models"
	"github.com/cppla/inkwell/store"
	"github.com/cppla/inkwell/utils"
)

// Repository is the data access the handlers need; *store.Store implements it.
type Repository interface {
	CreateUser(ctx context.Context, in store.NewUser) (uint, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUsersByUsername(ctx context.Context, username string, page store.Page) ([]models.User, error)
	UpdateUserPassword(ctx context.Context, id uint, password string) error
	CheckUserPassword(ctx context.Context, id uint, password string) (bool, error)
	DeleteUser(ctx context.Context, id uint) error
	CreateArticles(ctx context.Context, items []store.NewArticle) ([]uint, error)
	GetArticlesByAuthor(ctx context.Context, userID uint, page store.Page) ([]models.Article, error)
	CountUsers(ctx context.Context) (int64, error)
	CountArticles(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// statusFor maps a store error onto an HTTP status, an envelope code and the message shown to clients.
func statusFor(err error) (int, int, string) {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest, 40000, "invalid input"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, 40400, "resource not found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, 40900, "resource is still referenced"
	case errors.Is(err, store.ErrReference):
		return http.StatusUnprocessableEntity, 42200, "referenced resource does not exist"
	case errors.Is(err, store.ErrConnection):
		return http.StatusServiceUnavailable, 50300, "database unavailable"
	default:
		return http.StatusInternalServerError, 50000, ""
	}
}

// respondStoreError writes the JSON envelope for err. Driver text never reaches the client;
// a failing batch item is named by its index.
func respondStoreError(ctx *gin.Context, err error, fallback string) {
	status, code, msg := statusFor(err)
	if status >= 500 {
		_ = ctx.Error(err)
	}
	if msg == "" {
		msg = fallback
	}
	var txErr *store.TransactionError
	if errors.As(err, &txErr) && txErr.Index >= 0 {
		msg = fmt.Sprintf("item %d: %s", txErr.Index, msg)
	}
	utils.Error(ctx, status, code, msg)
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= store.MaxPageSize {
		pageSize = s
	}
	return page, pageSize
}

func paginationPayload(items interface{}, page, pageSize int) gin.H {
	return gin.H{
		"items": items,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
		},
	}
}
