package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"yatube/internal/http-api/dto"
	"yatube/internal/http-api/middleware"
	"yatube/internal/http-api/models"
	"yatube/internal/http-api/service"
	"yatube/internal/storage"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService  service.PostService
	groupService service.GroupService
	view         *View
}

func NewPostHandler(postService service.PostService, groupService service.GroupService, view *View) *PostHandler {
	return &PostHandler{
		postService:  postService,
		groupService: groupService,
		view:         view,
	}
}

// RegisterRoutes registers post-related routes
func (h *PostHandler) RegisterRoutes(router *gin.RouterGroup, mw Middlewares) {
	// Public routes
	router.GET("/", mw.IndexCache, h.Index)
	router.GET("/group/:slug/", h.GroupPosts)
	router.GET("/profile/:username/", h.Profile)
	router.GET("/posts/:id/", h.Detail)

	// Write routes
	protected := router.Group("", mw.RequireLogin)
	{
		protected.GET("/create/", h.CreateForm)
		protected.POST("/create/", h.Create)
		protected.GET("/posts/:id/edit/", h.EditForm)
		protected.POST("/posts/:id/edit/", h.Edit)
		protected.POST("/posts/:id/delete/", h.Delete)
		protected.GET("/follow/", h.FollowIndex)
	}
}

// Index lists every post
// GET /
func (h *PostHandler) Index(c *gin.Context) {
	page, err := h.postService.Index(c.Request.Context(), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "posts/index.html", gin.H{"page_obj": page})
}

// GroupPosts lists the posts of a group
// GET /group/:slug/
func (h *PostHandler) GroupPosts(c *gin.Context) {
	group, page, err := h.postService.GroupPosts(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "posts/group_list.html", gin.H{
		"group":      group,
		"page_obj":   page,
		"hide_group": true,
	})
}

// Profile lists the posts of an author
// GET /profile/:username/
func (h *PostHandler) Profile(c *gin.Context) {
	profile, err := h.postService.Profile(c.Request.Context(), c.Param("username"), middleware.CurrentUserID(c), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "posts/profile.html", gin.H{
		"author":          profile.Author,
		"page_obj":        profile.Page,
		"post_count":      profile.PostCount,
		"follower_count":  profile.FollowerCount,
		"following_count": profile.FollowingCount,
		"following":       profile.Following,
		"hide_author":     true,
	})
}

// Detail shows one post with its comments
// GET /posts/:id/
func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	detail, err := h.postService.Detail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"post":              detail.Post,
		"comments":          detail.Comments,
		"author_post_count": detail.AuthorPostCount,
		"form":              dto.CommentForm{},
	})
}

// FollowIndex lists posts of the followed authors
// GET /follow/
func (h *PostHandler) FollowIndex(c *gin.Context) {
	page, err := h.postService.FollowFeed(c.Request.Context(), middleware.CurrentUserID(c), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "posts/follow.html", gin.H{"page_obj": page})
}

// CreateForm shows an empty post form
// GET /create/
func (h *PostHandler) CreateForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, dto.PostForm{}, dto.FormErrors{}, nil)
}

// Create publishes a post
// POST /create/
func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form dto.PostForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusOK, form, dto.NewFormErrors(err), nil)
		return
	}

	input, cleanup, errs := h.postInput(c, form)
	defer cleanup()
	if !errs.Empty() {
		h.renderForm(c, http.StatusOK, form, errs, nil)
		return
	}

	if _, err := h.postService.Create(c.Request.Context(), user.ID, input); err != nil {
		if errs := formErrorsFor(err); errs != nil {
			h.renderForm(c, http.StatusOK, form, errs, nil)
			return
		}
		h.view.ServerError(c, err)
		return
	}

	middleware.RecordAction(middleware.ActionPostCreate)
	redirectTo(c, profileURL(user.Username))
}

// EditForm shows the form of an existing post to its author
// GET /posts/:id/edit/
func (h *PostHandler) EditForm(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}
	form := dto.PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = strconv.FormatInt(*post.GroupID, 10)
	}
	h.renderForm(c, http.StatusOK, form, dto.FormErrors{}, post)
}

// Edit saves changes to a post; anyone but the author is sent back to the post
// POST /posts/:id/edit/
func (h *PostHandler) Edit(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}

	var form dto.PostForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusOK, form, dto.NewFormErrors(err), post)
		return
	}

	input, cleanup, errs := h.postInput(c, form)
	defer cleanup()
	if !errs.Empty() {
		h.renderForm(c, http.StatusOK, form, errs, post)
		return
	}

	if _, err := h.postService.Update(c.Request.Context(), post.ID, middleware.CurrentUserID(c), input); err != nil {
		if errors.Is(err, service.ErrNotAuthor) {
			redirectTo(c, postURL(post.ID))
			return
		}
		if errs := formErrorsFor(err); errs != nil {
			h.renderForm(c, http.StatusOK, form, errs, post)
			return
		}
		h.fail(c, err)
		return
	}

	middleware.RecordAction(middleware.ActionPostEdit)
	redirectTo(c, postURL(post.ID))
}

// Delete removes a post of the current user
// POST /posts/:id/delete/
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	post, err := h.postService.Delete(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotAuthor) {
			redirectTo(c, postURL(id))
			return
		}
		h.fail(c, err)
		return
	}

	middleware.RecordAction(middleware.ActionPostDelete)
	redirectTo(c, profileURL(post.Author.Username))
}

// ownPost loads the post of the :id param. It answers 404 for unknown posts
// and redirects non-authors to the detail page.
func (h *PostHandler) ownPost(c *gin.Context) (*models.Post, bool) {
	id, ok := h.postID(c)
	if !ok {
		return nil, false
	}
	post, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	if post.AuthorID != middleware.CurrentUserID(c) {
		redirectTo(c, postURL(id))
		return nil, false
	}
	return post, true
}

func (h *PostHandler) postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		h.view.NotFound(c)
		return 0, false
	}
	return id, true
}

// postInput reads the optional image part. The returned cleanup closes it.
func (h *PostHandler) postInput(c *gin.Context, form dto.PostForm) (service.PostInput, func(), dto.FormErrors) {
	input := service.PostInput{
		Text:       form.Text,
		GroupID:    form.GroupID(),
		ClearImage: form.ClearImage,
	}
	errs := dto.FormErrors{}
	cleanup := func() {}

	header, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return input, cleanup, errs
	case err != nil:
		errs.Add("image", "The submitted file could not be read.")
		return input, cleanup, errs
	case header.Size == 0:
		errs.Add("image", "The submitted file is empty.")
		return input, cleanup, errs
	}

	file, err := header.Open()
	if err != nil {
		errs.Add("image", "The submitted file could not be read.")
		return input, cleanup, errs
	}
	input.Image = &storage.Upload{Filename: header.Filename, File: file}
	return input, func() { closeUpload(file) }, errs
}

func closeUpload(file multipart.File) {
	_ = file.Close()
}

func (h *PostHandler) renderForm(c *gin.Context, status int, form dto.PostForm, errs dto.FormErrors, post *models.Post) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		h.view.ServerError(c, err)
		return
	}
	h.view.HTML(c, status, "posts/create_post.html", gin.H{
		"form":    form,
		"errors":  errs,
		"groups":  groups,
		"post":    post,
		"is_edit": post != nil,
	})
}

// fail maps service errors onto 404 pages and everything else onto 500.
func (h *PostHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPageNotFound):
		h.view.NotFound(c)
	default:
		h.view.ServerError(c, err)
	}
}

// formErrorsFor turns a rejected field value into form errors, nil for other errors.
func formErrorsFor(err error) dto.FormErrors {
	errs := dto.FormErrors{}
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		errs.Add("group", "Select a valid choice. That choice is not one of the available choices.")
	case errors.Is(err, storage.ErrInvalidImage):
		errs.Add("image", err.Error())
	default:
		return nil
	}
	return errs
}

func profileURL(username string) string {
	return fmt.Sprintf("/profile/%s/", url.PathEscape(username))
}

func postURL(id int64) string {
	return fmt.Sprintf("/posts/%d/", id)
}
