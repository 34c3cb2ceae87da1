package task

import (
	"errors"
	"testing"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/models"
)

func TestComments(t *testing.T) {
	f := newFixture(t)
	v := f.task(t, CreateOpts{Title: "t", AssigneeID: uintPtr(4)})

	first, err := f.svc.AddComment(v.ID, 2, "first")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := f.svc.AddComment(v.ID, 4, "reply from assignee"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	list, err := f.svc.ListComments(v.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID {
		t.Errorf("comments = %+v, want oldest first", list)
	}

	var commentNotes int
	for _, n := range f.notifications(t, 4) {
		if n.Type == models.NotifyCommentAdded {
			commentNotes++
		}
	}
	if commentNotes != 1 {
		t.Errorf("COMMENT_ADDED notifications = %d, want 1", commentNotes)
	}

	if err := f.svc.DeleteComment(first.ID, 4); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("delete by non-author error = %v", err)
	}
	if err := f.svc.DeleteComment(first.ID, 2); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	list, _ = f.svc.ListComments(v.ID)
	if len(list) != 1 {
		t.Errorf("comments after delete = %d, want 1", len(list))
	}
	got, _ := f.svc.Get(v.ID)
	if got.CommentCount != 1 {
		t.Errorf("CommentCount = %d, want 1", got.CommentCount)
	}
}

func TestComments_Errors(t *testing.T) {
	f := newFixture(t)
	v := f.task(t, CreateOpts{Title: "t"})

	if _, err := f.svc.AddComment(v.ID, 2, "  "); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("blank content error = %v", err)
	}
	if _, err := f.svc.AddComment(v.ID, 0, "x"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("missing author error = %v", err)
	}
	if _, err := f.svc.AddComment(999, 2, "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing task error = %v", err)
	}
	if _, err := f.svc.ListComments(999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("list missing task error = %v", err)
	}
	if err := f.svc.DeleteComment(999, 2); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete missing error = %v", err)
	}
}
