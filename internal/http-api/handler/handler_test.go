package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"yatube/internal/http-api/middleware"
	"yatube/internal/http-api/models"
	"yatube/internal/http-api/service"
	"yatube/internal/http-api/templates"
	"yatube/internal/paginator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	author = &models.User{ID: "u1", Username: "leo", IsActive: true}
	reader = &models.User{ID: "u2", Username: "ann", IsActive: true}
)

var testCookies = middleware.CookieOptions{Name: "yatube_session", MaxAge: time.Hour}

type testApp struct {
	router   *gin.Engine
	posts    *MockPostService
	groups   *MockGroupService
	comments *MockCommentService
	follows  *MockFollowService
	auth     *MockAuthService
}

// setupRouter wires every handler to mocks; user is the signed in visitor or nil.
func setupRouter(t *testing.T, user *models.User) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	renderer, err := templates.New()
	require.NoError(t, err)
	view := NewView(renderer, "/media/", zap.NewNop())

	app := &testApp{
		router:   gin.New(),
		posts:    new(MockPostService),
		groups:   new(MockGroupService),
		comments: new(MockCommentService),
		follows:  new(MockFollowService),
		auth:     new(MockAuthService),
	}

	app.router.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.ContextUser, user)
			c.Set(middleware.ContextUserID, user.ID)
		}
		c.Next()
	})

	RegisterRoutes(app.router, Handlers{
		Posts:    NewPostHandler(app.posts, app.groups, view),
		Comments: NewCommentHandler(app.comments, view, zap.NewNop()),
		Follows:  NewFollowHandler(app.follows, view),
		Auth:     NewAuthHandler(app.auth, testCookies, view, zap.NewNop()),
		About:    NewAboutHandler(view),
		View:     view,
	}, Middlewares{RequireLogin: middleware.LoginRequired()})

	return app
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	a.router.ServeHTTP(w, req)
	return w
}

func onePage(posts ...models.Post) *paginator.Page[models.Post] {
	return paginator.NewPage(posts, 1, int64(len(posts)), 10)
}

func samplePost() *models.Post {
	return &models.Post{ID: 7, Text: "Sample text", AuthorID: author.ID, Author: *author, PubDate: time.Now()}
}

func TestIndex_Success(t *testing.T) {
	app := setupRouter(t, nil)
	app.posts.On("Index", mock.Anything, "").Return(onePage(*samplePost()), nil)

	w := app.get("/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Latest updates on the site")
	assert.Contains(t, w.Body.String(), "Sample text")
	app.posts.AssertExpectations(t)
}

func TestIndex_PageOutOfRange(t *testing.T) {
	app := setupRouter(t, nil)
	app.posts.On("Index", mock.Anything, "99").Return(nil, service.ErrPageNotFound)

	w := app.get("/?page=99")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Custom 404")
}

func TestGroupPosts_UnknownGroup(t *testing.T) {
	app := setupRouter(t, nil)
	app.posts.On("GroupPosts", mock.Anything, "nope", "").Return(nil, nil, service.ErrGroupNotFound)

	w := app.get("/group/nope/")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupPosts_Success(t *testing.T) {
	app := setupRouter(t, nil)
	group := &models.Group{ID: 1, Title: "Cats", Slug: "cats", Description: "All about cats"}
	app.posts.On("GroupPosts", mock.Anything, "cats", "").Return(group, onePage(*samplePost()), nil)

	w := app.get("/group/cats/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "All about cats")
}

func TestProfile_ShowsFollowButton(t *testing.T) {
	app := setupRouter(t, reader)
	app.posts.On("Profile", mock.Anything, "leo", reader.ID, "").Return(&service.ProfilePage{
		Author:    author,
		Page:      onePage(*samplePost()),
		PostCount: 1,
		Following: false,
	}, nil)

	w := app.get("/profile/leo/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/profile/leo/follow/"`)
	app.posts.AssertExpectations(t)
}

func TestDetail(t *testing.T) {
	t.Run("bad id", func(t *testing.T) {
		app := setupRouter(t, nil)
		w := app.get("/posts/abc/")
		assert.Equal(t, http.StatusNotFound, w.Code)
		app.posts.AssertNotCalled(t, "Detail", mock.Anything, mock.Anything)
	})

	t.Run("unknown post", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.posts.On("Detail", mock.Anything, int64(42)).Return(nil, service.ErrPostNotFound)
		w := app.get("/posts/42/")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("with comments", func(t *testing.T) {
		app := setupRouter(t, reader)
		post := samplePost()
		app.posts.On("Detail", mock.Anything, post.ID).Return(&service.PostDetail{
			Post:            post,
			Comments:        []models.Comment{{ID: 1, PostID: post.ID, Text: "Nice one", Author: *reader, Created: time.Now()}},
			AuthorPostCount: 3,
		}, nil)

		w := app.get("/posts/7/")
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Nice one")
		assert.Contains(t, body, `action="/posts/7/comment/"`)
		assert.NotContains(t, body, "/posts/7/edit/")
	})
}

func TestCreate_AnonymousRedirectsToLogin(t *testing.T) {
	app := setupRouter(t, nil)

	w := app.postForm("/create/", url.Values{"text": {"hello"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))
	app.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_Success(t *testing.T) {
	app := setupRouter(t, author)
	app.posts.On("Create", mock.Anything, author.ID, mock.MatchedBy(func(in service.PostInput) bool {
		return in.Text == "hello" && in.GroupID != nil && *in.GroupID == 3 && in.Image == nil
	})).Return(&models.Post{ID: 1}, nil)

	w := app.postForm("/create/", url.Values{"text": {"hello"}, "group": {"3"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	app.posts.AssertExpectations(t)
}

func TestCreate_WithImage(t *testing.T) {
	app := setupRouter(t, author)
	app.posts.On("Create", mock.Anything, author.ID, mock.MatchedBy(func(in service.PostInput) bool {
		return in.Image != nil && in.Image.Filename == "small.gif"
	})).Return(&models.Post{ID: 1}, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "with picture"))
	part, err := mw.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = part.Write([]byte("GIF89a"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	app.posts.AssertExpectations(t)
}

func TestCreate_InvalidForm(t *testing.T) {
	app := setupRouter(t, author)
	app.groups.On("List", mock.Anything).Return([]models.Group{{ID: 3, Title: "Cats", Slug: "cats"}}, nil)

	w := app.postForm("/create/", url.Values{"text": {"   "}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	app.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_UnknownGroup(t *testing.T) {
	app := setupRouter(t, author)
	app.groups.On("List", mock.Anything).Return([]models.Group{}, nil)
	app.posts.On("Create", mock.Anything, author.ID, mock.Anything).Return(nil, service.ErrGroupNotFound)

	w := app.postForm("/create/", url.Values{"text": {"hello"}, "group": {"999"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Select a valid choice.")
}

func TestEdit_NonAuthorRedirected(t *testing.T) {
	app := setupRouter(t, reader)
	app.posts.On("Get", mock.Anything, int64(7)).Return(samplePost(), nil)

	for _, w := range []*httptest.ResponseRecorder{
		app.get("/posts/7/edit/"),
		app.postForm("/posts/7/edit/", url.Values{"text": {"hijacked"}}),
	} {
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/posts/7/", w.Header().Get("Location"))
	}
	app.posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEdit_AuthorForm(t *testing.T) {
	app := setupRouter(t, author)
	groupID := int64(3)
	post := samplePost()
	post.GroupID = &groupID
	app.posts.On("Get", mock.Anything, int64(7)).Return(post, nil)
	app.groups.On("List", mock.Anything).Return([]models.Group{{ID: 3, Title: "Cats", Slug: "cats"}}, nil)

	w := app.get("/posts/7/edit/")

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Edit post")
	assert.Contains(t, body, "Sample text")
	assert.Contains(t, body, `<option value="3" selected>`)
}

func TestEdit_Success(t *testing.T) {
	app := setupRouter(t, author)
	app.posts.On("Get", mock.Anything, int64(7)).Return(samplePost(), nil)
	app.posts.On("Update", mock.Anything, int64(7), author.ID, mock.MatchedBy(func(in service.PostInput) bool {
		return in.Text == "changed" && in.GroupID == nil
	})).Return(samplePost(), nil)

	w := app.postForm("/posts/7/edit/", url.Values{"text": {"changed"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/7/", w.Header().Get("Location"))
	app.posts.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	t.Run("non author", func(t *testing.T) {
		app := setupRouter(t, reader)
		app.posts.On("Delete", mock.Anything, int64(7), reader.ID).Return(nil, service.ErrNotAuthor)
		w := app.postForm("/posts/7/delete/", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/posts/7/", w.Header().Get("Location"))
	})

	t.Run("author", func(t *testing.T) {
		app := setupRouter(t, author)
		app.posts.On("Delete", mock.Anything, int64(7), author.ID).Return(samplePost(), nil)
		w := app.postForm("/posts/7/delete/", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	})
}

func TestFollowIndex(t *testing.T) {
	app := setupRouter(t, reader)
	app.posts.On("FollowFeed", mock.Anything, reader.ID, "").Return(onePage(*samplePost()), nil)

	w := app.get("/follow/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sample text")
}

func TestAddComment(t *testing.T) {
	t.Run("get redirects to post", func(t *testing.T) {
		app := setupRouter(t, reader)
		w := app.get("/posts/7/comment/")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/posts/7/", w.Header().Get("Location"))
	})

	t.Run("anonymous", func(t *testing.T) {
		app := setupRouter(t, nil)
		w := app.postForm("/posts/7/comment/", url.Values{"text": {"hi"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/login/?next=%2Fposts%2F7%2Fcomment%2F", w.Header().Get("Location"))
		app.comments.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank comment is dropped", func(t *testing.T) {
		app := setupRouter(t, reader)
		w := app.postForm("/posts/7/comment/", url.Values{"text": {""}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/posts/7/", w.Header().Get("Location"))
		app.comments.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("saved", func(t *testing.T) {
		app := setupRouter(t, reader)
		app.comments.On("AddComment", mock.Anything, int64(7), reader.ID, "hi").Return(&models.Comment{ID: 1}, nil)
		w := app.postForm("/posts/7/comment/", url.Values{"text": {"hi"}})
		assert.Equal(t, http.StatusFound, w.Code)
		app.comments.AssertExpectations(t)
	})

	t.Run("unknown post", func(t *testing.T) {
		app := setupRouter(t, reader)
		app.comments.On("AddComment", mock.Anything, int64(99), reader.ID, "hi").Return(nil, service.ErrPostNotFound)
		w := app.postForm("/posts/99/comment/", url.Values{"text": {"hi"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFollowHandlers(t *testing.T) {
	t.Run("follow", func(t *testing.T) {
		app := setupRouter(t, reader)
		app.follows.On("Follow", mock.Anything, reader.ID, "leo").Return(author, nil)
		w := app.get("/profile/leo/follow/")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	})

	t.Run("unfollow by post", func(t *testing.T) {
		app := setupRouter(t, reader)
		app.follows.On("Unfollow", mock.Anything, reader.ID, "leo").Return(author, nil)
		w := app.postForm("/profile/leo/unfollow/", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	})

	t.Run("unknown author", func(t *testing.T) {
		app := setupRouter(t, reader)
		app.follows.On("Follow", mock.Anything, reader.ID, "ghost").Return(nil, service.ErrUserNotFound)
		w := app.get("/profile/ghost/follow/")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		app := setupRouter(t, nil)
		w := app.get("/profile/leo/follow/")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/?next="))
		app.follows.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success follows next", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.auth.On("Authenticate", mock.Anything, "leo", "test_pass").Return(author, nil)
		app.auth.On("IssueSession", author).Return("token-1", nil)

		w := app.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"test_pass"}, "next": {"/create/"}})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/create/", w.Header().Get("Location"))
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "token-1", cookies[0].Value)
	})

	t.Run("foreign next is ignored", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.auth.On("Authenticate", mock.Anything, "leo", "test_pass").Return(author, nil)
		app.auth.On("IssueSession", author).Return("token-1", nil)

		w := app.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"test_pass"}, "next": {"//evil.example/"}})

		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("bad credentials", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.auth.On("Authenticate", mock.Anything, "leo", "nope").Return(nil, service.ErrInvalidCredentials)

		w := app.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"nope"}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Please enter a correct username and password.")
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("form keeps next from query", func(t *testing.T) {
		app := setupRouter(t, nil)
		w := app.get("/auth/login/?next=%2Fcreate%2F")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="next" value="/create/"`)
	})
}

func TestSignup(t *testing.T) {
	form := url.Values{
		"first_name": {"Leo"},
		"username":   {"leo"},
		"email":      {"leo@example.com"},
		"password1":  {"test_pass_123"},
		"password2":  {"test_pass_123"},
	}

	t.Run("success", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.auth.On("Register", mock.Anything, service.SignupInput{
			FirstName: "Leo", Username: "leo", Email: "leo@example.com", Password: "test_pass_123",
		}).Return(author, nil)

		w := app.postForm("/auth/signup/", form)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		app.auth.AssertExpectations(t)
	})

	t.Run("name in use", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.auth.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrNameInUse)

		w := app.postForm("/auth/signup/", form)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "A user with that username already exists.")
	})

	t.Run("passwords differ", func(t *testing.T) {
		app := setupRouter(t, nil)
		bad := url.Values{"username": {"leo"}, "password1": {"test_pass_123"}, "password2": {"other_pass_123"}}

		w := app.postForm("/auth/signup/", bad)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "The two password fields didn")
		app.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestLogout(t *testing.T) {
	app := setupRouter(t, author)

	w := app.get("/auth/logout/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You have been logged out.")
	assert.NotContains(t, w.Body.String(), "User: leo")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestPasswordChange(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		app := setupRouter(t, nil)
		w := app.get("/auth/password_change/")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/login/?next=%2Fauth%2Fpassword_change%2F", w.Header().Get("Location"))
	})

	t.Run("success renews session", func(t *testing.T) {
		app := setupRouter(t, author)
		app.auth.On("ChangePassword", mock.Anything, author.ID, "old_pass_1", "new_pass_123").Return(author, nil)
		app.auth.On("IssueSession", author).Return("token-2", nil)

		w := app.postForm("/auth/password_change/", url.Values{
			"old_password":  {"old_pass_1"},
			"new_password1": {"new_pass_123"},
			"new_password2": {"new_pass_123"},
		})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/password_change/done/", w.Header().Get("Location"))
		require.Len(t, w.Result().Cookies(), 1)
		assert.Equal(t, "token-2", w.Result().Cookies()[0].Value)
	})

	t.Run("wrong old password", func(t *testing.T) {
		app := setupRouter(t, author)
		app.auth.On("ChangePassword", mock.Anything, author.ID, "wrong", "new_pass_123").Return(nil, service.ErrInvalidCredentials)

		w := app.postForm("/auth/password_change/", url.Values{
			"old_password":  {"wrong"},
			"new_password1": {"new_pass_123"},
			"new_password2": {"new_pass_123"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Your old password was entered incorrectly.")
	})
}

func TestPasswordReset(t *testing.T) {
	t.Run("always redirects to done", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.auth.On("RequestPasswordReset", mock.Anything, "ghost@example.com").Return(nil)

		w := app.postForm("/auth/password_reset/", url.Values{"email": {"ghost@example.com"}})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/password_reset/done/", w.Header().Get("Location"))
	})

	t.Run("mailer failure", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.auth.On("RequestPasswordReset", mock.Anything, "leo@example.com").Return(errors.New("smtp down"))

		w := app.postForm("/auth/password_reset/", url.Values{"email": {"leo@example.com"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Custom 500")
	})

	t.Run("invalid link", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.auth.On("CheckResetLink", mock.Anything, "uid", "token").Return(nil, service.ErrInvalidResetLink)

		w := app.get("/auth/reset/uid/token/")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Password reset unsuccessful")
	})

	t.Run("confirm", func(t *testing.T) {
		app := setupRouter(t, nil)
		app.auth.On("CheckResetLink", mock.Anything, "uid", "token").Return(author, nil)
		app.auth.On("ResetPassword", mock.Anything, "uid", "token", "new_pass_123").Return(nil)

		w := app.postForm("/auth/reset/uid/token/", url.Values{
			"new_password1": {"new_pass_123"},
			"new_password2": {"new_pass_123"},
		})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/reset/done/", w.Header().Get("Location"))
	})

	t.Run("done pages", func(t *testing.T) {
		app := setupRouter(t, nil)
		assert.Equal(t, http.StatusOK, app.get("/auth/password_reset/done/").Code)
		assert.Equal(t, http.StatusOK, app.get("/auth/reset/done/").Code)
	})
}

func TestAboutPages(t *testing.T) {
	app := setupRouter(t, nil)

	assert.Equal(t, http.StatusOK, app.get("/about/author/").Code)
	assert.Equal(t, http.StatusOK, app.get("/about/tech/").Code)
}

func TestUnknownPage(t *testing.T) {
	app := setupRouter(t, nil)

	w := app.get("/unexisting_page/")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Custom 404")
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/create/":             "/create/",
		"/posts/1/?page=2":     "/posts/1/?page=2",
		"//evil.example/":      "/",
		"https://evil.example": "/",
		`/\evil.example`:       "/",
		"relative/":            "/",
	}
	for next, want := range tests {
		assert.Equal(t, want, safeNext(next), next)
	}
}
