package templates

import (
	"html/template"
	"net/http/httptest"
	"testing"
	"time"

	"yatube/internal/http-api/dto"
	"yatube/internal/http-api/models"
	"yatube/internal/paginator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesAllPages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, name := range []string{
		"posts/index.html",
		"posts/group_list.html",
		"posts/profile.html",
		"posts/post_detail.html",
		"posts/create_post.html",
		"posts/follow.html",
		"users/signup.html",
		"users/login.html",
		"users/logged_out.html",
		"users/password_change_form.html",
		"users/password_change_done.html",
		"users/password_reset_form.html",
		"users/password_reset_done.html",
		"users/password_reset_confirm.html",
		"users/password_reset_complete.html",
		"about/author.html",
		"about/tech.html",
		"core/404.html",
		"core/500.html",
		"core/403csrf.html",
	} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("base.html"))
	assert.False(t, r.Has("includes/paginator.html"))
}

func TestRender_Index(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	group := &models.Group{ID: 1, Title: "Cats", Slug: "cats"}
	posts := []models.Post{
		{ID: 2, Text: "line one\nline <two>", PubDate: time.Now(), Author: models.User{Username: "leo"}, GroupID: &group.ID, Group: group},
	}
	page := paginator.NewPage(posts, 1, 11, 10)

	w := httptest.NewRecorder()
	err = r.Instance("posts/index.html", map[string]any{
		"page_obj":  page,
		"csrfField": template.HTML(""),
		"mediaURL":  "/media/",
	}).Render(w)
	require.NoError(t, err)

	body := w.Body.String()
	assert.Contains(t, body, "line one<br>line &lt;two&gt;")
	assert.Contains(t, body, `href="/group/cats/"`)
	assert.Contains(t, body, `href="/profile/leo/"`)
	assert.Contains(t, body, `href="?page=2"`)
}

func TestRender_FormErrors(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	errs := dto.FormErrors{}
	errs.Add("text", "This field is required.")

	w := httptest.NewRecorder()
	err = r.Instance("posts/create_post.html", map[string]any{
		"form":   dto.PostForm{},
		"errors": errs,
		"groups": []models.Group{{ID: 1, Title: "Cats", Slug: "cats"}},
	}).Render(w)
	require.NoError(t, err)

	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.Contains(t, w.Body.String(), "Cats")
}

func TestFuncs(t *testing.T) {
	assert.Equal(t, template.HTML("a<br>b &amp; c"), linebreaksbr("a\r\nb & c"))
	assert.Equal(t, "hello", truncatechars(10, "hello"))
	assert.Equal(t, "hel…", truncatechars(4, "hello"))
	assert.Equal(t, "3 March 2024", formatDate(time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)))
	assert.Nil(t, fieldErrors(nil, "text"))
}
