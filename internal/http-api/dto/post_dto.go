package dto

import (
	"strconv"
	"strings"
)

// PostForm is the create/edit form of a post. The image arrives as a separate file part.
type PostForm struct {
	Text       string `form:"text" binding:"notblank,max=10000"`
	Group      string `form:"group" binding:"omitempty,numeric"`
	ClearImage bool   `form:"image-clear"`
}

// GroupID is the selected group, nil when none was chosen.
func (f PostForm) GroupID() *int64 {
	raw := strings.TrimSpace(f.Group)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// CommentForm is the comment box under a post.
type CommentForm struct {
	Text string `form:"text" binding:"notblank,max=5000"`
}
