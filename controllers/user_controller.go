package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/inkwell/store"
	"github.com/cppla/inkwell/utils"
)

// UserController exposes the user operations over JSON.
type UserController struct {
	repo Repository
}

// NewUserController creates a new UserController instance.
func NewUserController(repo Repository) *UserController {
	return &UserController{repo: repo}
}

// CreateUser registers a user from the request body.
func (u *UserController) CreateUser(ctx *gin.Context) {
	var req struct {
		Username  string  `json:"username" binding:"required"`
		Password  string  `json:"password" binding:"required"`
		Email     *string `json:"email"`
		Signature *string `json:"signature"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	id, err := u.repo.CreateUser(ctx.Request.Context(), store.NewUser{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		Signature: req.Signature,
	})
	if err != nil {
		respondStoreError(ctx, err, "failed to create user")
		return
	}
	utils.Created(ctx, gin.H{"id": id})
}

// GetUser returns one user by id.
func (u *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid user id")
		return
	}
	user, err := u.repo.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		respondStoreError(ctx, err, "failed to get user")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// FindUsers lists users with an exact username, oldest first.
func (u *UserController) FindUsers(ctx *gin.Context) {
	username := ctx.Query("username")
	if strings.TrimSpace(username) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40012, "missing username")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	users, err := u.repo.FindUsersByUsername(ctx.Request.Context(), username, store.Page{Number: page, Size: pageSize})
	if err != nil {
		respondStoreError(ctx, err, "failed to find users")
		return
	}
	utils.Success(ctx, paginationPayload(users, page, pageSize))
}

// UpdatePassword replaces the password of a user.
func (u *UserController) UpdatePassword(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid user id")
		return
	}
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid request payload")
		return
	}

	if err := u.repo.UpdateUserPassword(ctx.Request.Context(), id, req.Password); err != nil {
		respondStoreError(ctx, err, "failed to update password")
		return
	}
	utils.Success(ctx, gin.H{"message": "password updated"})
}

// VerifyPassword reports whether the submitted password matches the stored one.
func (u *UserController) VerifyPassword(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40016, "invalid user id")
		return
	}
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40017, "invalid request payload")
		return
	}

	match, err := u.repo.CheckUserPassword(ctx.Request.Context(), id, req.Password)
	if err != nil {
		respondStoreError(ctx, err, "failed to verify password")
		return
	}
	utils.Success(ctx, gin.H{"match": match})
}

// DeleteUser removes a user that no article references.
func (u *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40015, "invalid user id")
		return
	}
	if err := u.repo.DeleteUser(ctx.Request.Context(), id); err != nil {
		respondStoreError(ctx, err, "failed to delete user")
		return
	}
	utils.Success(ctx, gin.H{"message": "user deleted"})
}
