package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/inkwell/store"
)

// Fixed inputs of the demo routes.
const (
	demoUsername    = "唐"
	demoPassword    = "130796"
	demoNewPassword = "2222"
	demoUserID      = uint(1)
	demoAuthorID    = uint(2)
)

// DemoController serves the parameterless example routes. Each runs one fixed
// data-access sequence and answers with a short plain-text message.
type DemoController struct {
	repo Repository
	log  *zap.Logger
}

// NewDemoController creates a new DemoController instance.
func NewDemoController(repo Repository, log *zap.Logger) *DemoController {
	return &DemoController{repo: repo, log: log}
}

// Hello is the liveness check.
func (d *DemoController) Hello(ctx *gin.Context) {
	ctx.String(http.StatusOK, "Hello World!")
}

// AddUser inserts the demo user.
func (d *DemoController) AddUser(ctx *gin.Context) {
	id, err := d.repo.CreateUser(ctx.Request.Context(), store.NewUser{Username: demoUsername, Password: demoPassword})
	if err != nil {
		d.fail(ctx, err, "用户创建失败")
		return
	}
	d.log.Info("demo user created", zap.Uint("id", id))
	ctx.String(http.StatusCreated, "用户创建成功")
}

// QueryUser looks the demo user up by id and by username.
func (d *DemoController) QueryUser(ctx *gin.Context) {
	rc := ctx.Request.Context()
	user, err := d.repo.GetUserByID(rc, demoUserID)
	if err != nil {
		d.fail(ctx, err, "用户不存在")
		return
	}
	d.log.Info("user by id", zap.Uint("id", user.ID), zap.String("username", user.Username))

	users, err := d.repo.FindUsersByUsername(rc, demoUsername, store.Page{})
	if err != nil {
		d.fail(ctx, err, "查询用户失败")
		return
	}
	for _, u := range users {
		d.log.Info("user by username", zap.Uint("id", u.ID), zap.String("username", u.Username))
	}
	ctx.String(http.StatusOK, "查询用户成功！")
}

// UpdateUser changes the password of the first user with the demo username.
func (d *DemoController) UpdateUser(ctx *gin.Context) {
	rc := ctx.Request.Context()
	users, err := d.repo.FindUsersByUsername(rc, demoUsername, store.Page{Number: 1, Size: 1})
	if err != nil {
		d.fail(ctx, err, "查询用户失败")
		return
	}
	if len(users) == 0 {
		ctx.String(http.StatusNotFound, "用户不存在")
		return
	}
	if err := d.repo.UpdateUserPassword(rc, users[0].ID, demoNewPassword); err != nil {
		d.fail(ctx, err, "用户数据修改失败")
		return
	}
	ctx.String(http.StatusOK, "用户数据修改成功")
}

// DeleteUser removes the demo user id.
func (d *DemoController) DeleteUser(ctx *gin.Context) {
	if err := d.repo.DeleteUser(ctx.Request.Context(), demoUserID); err != nil {
		d.fail(ctx, err, "用户数据删除失败")
		return
	}
	ctx.String(http.StatusOK, "用户数据删除成功！")
}

// AddArticles inserts the two demo articles for the demo author in one transaction.
func (d *DemoController) AddArticles(ctx *gin.Context) {
	author := demoAuthorID
	ids, err := d.repo.CreateArticles(ctx.Request.Context(), []store.NewArticle{
		{Title: "Flask学习大纲", Content: "Flaskwqqq", AuthorID: &author},
		{Title: "Django学习大纲", Content: "Djangowqqq", AuthorID: &author},
	})
	if err != nil {
		d.fail(ctx, err, "添加文章失败")
		return
	}
	d.log.Info("demo articles created", zap.Uints("ids", ids))
	ctx.String(http.StatusCreated, "添加文章成功！")
}

// QueryArticles lists the articles of the demo author.
func (d *DemoController) QueryArticles(ctx *gin.Context) {
	rc := ctx.Request.Context()
	if _, err := d.repo.GetUserByID(rc, demoAuthorID); err != nil {
		d.fail(ctx, err, "用户不存在")
		return
	}
	articles, err := d.repo.GetArticlesByAuthor(rc, demoAuthorID, store.Page{})
	if err != nil {
		d.fail(ctx, err, "查询文章失败")
		return
	}
	for _, a := range articles {
		d.log.Info("article by author", zap.Uint("author_id", demoAuthorID), zap.String("title", a.Title))
	}
	ctx.String(http.StatusOK, "通过user对象查询所有文章成功！")
}

func (d *DemoController) fail(ctx *gin.Context, err error, msg string) {
	status, _, _ := statusFor(err)
	if status >= http.StatusInternalServerError {
		d.log.Error(msg, zap.Error(err))
	}
	ctx.String(status, msg)
}
