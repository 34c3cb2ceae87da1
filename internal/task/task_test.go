package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/audit"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/models"
	"github.com/zulandar/taskflow/internal/position"
)

func TestCreate_DefaultsAuditAndEvent(t *testing.T) {
	f := newFixture(t)
	sub := f.hub.Subscribe(broadcast.TaskTopic(f.ws.ID))
	defer sub.Close()

	v := f.task(t, CreateOpts{Title: "  Write docs  "})
	if v.Title != "Write docs" || v.Status != models.StatusTodo || v.Priority != models.PriorityMedium {
		t.Errorf("task = %+v", v.Task)
	}
	if v.CreatorID != actor || v.BoardColumnID != nil || v.Position != 0 {
		t.Errorf("task = %+v", v.Task)
	}

	rows := f.history(t, v.ID)
	if len(rows) != 1 || rows[0].Action != audit.ActionCreate {
		t.Errorf("history = %+v, want one CREATE", rows)
	}

	ev := nextEvent(t, sub)
	if ev.Type != broadcast.TaskCreated {
		t.Errorf("event type = %q", ev.Type)
	}
	var body View
	if err := json.Unmarshal(ev.Payload, &body); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if body.ID != v.ID || body.Subtasks == nil {
		t.Errorf("payload = %+v", body)
	}
}

func TestCreate_AppendsInColumn(t *testing.T) {
	f := newFixture(t)
	b := f.board(t)
	col := b.Columns[0].ID
	for i := 0; i < 3; i++ {
		v := f.task(t, CreateOpts{Title: fmt.Sprintf("t%d", i), BoardColumnID: &col})
		if v.Position != i {
			t.Errorf("t%d position = %d, want %d", i, v.Position, i)
		}
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	other, _ := f.svc.CreateWorkspace("Other", actor)
	otherBoard, err := f.svc.CreateBoard(other.ID, actor, "B", "")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	foreignTask, err := f.svc.Create(other.ID, actor, CreateOpts{Title: "foreign"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name string
		ws   uint
		opts CreateOpts
		want error
	}{
		{"blank title", f.ws.ID, CreateOpts{Title: " "}, apperr.ErrInvalidArgument},
		{"bad priority", f.ws.ID, CreateOpts{Title: "x", Priority: "SOON"}, apperr.ErrInvalidArgument},
		{"missing workspace", 999, CreateOpts{Title: "x"}, apperr.ErrNotFound},
		{"missing column", f.ws.ID, CreateOpts{Title: "x", BoardColumnID: uintPtr(999)}, apperr.ErrNotFound},
		{"foreign column", f.ws.ID, CreateOpts{Title: "x", BoardColumnID: &otherBoard.Columns[0].ID}, apperr.ErrInvalidArgument},
		{"missing parent", f.ws.ID, CreateOpts{Title: "x", ParentTaskID: uintPtr(999)}, apperr.ErrNotFound},
		{"foreign parent", f.ws.ID, CreateOpts{Title: "x", ParentTaskID: &foreignTask.ID}, apperr.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Create(tt.ws, actor, tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreate_NotifiesAssignee(t *testing.T) {
	f := newFixture(t)
	f.task(t, CreateOpts{Title: "self-assigned", AssigneeID: uintPtr(actor)})
	if n := f.notifications(t, actor); len(n) != 0 {
		t.Errorf("self-assignment notified: %+v", n)
	}

	v := f.task(t, CreateOpts{Title: "for bob", AssigneeID: uintPtr(2)})
	n := f.notifications(t, 2)
	if len(n) != 1 || n[0].Type != models.NotifyTaskAssigned || n[0].ReferenceID == nil || *n[0].ReferenceID != v.ID {
		t.Errorf("notifications = %+v", n)
	}
}

func TestGet_IncludesRollup(t *testing.T) {
	f := newFixture(t)
	v := f.task(t, CreateOpts{Title: "t"})
	a, _ := f.svc.AddSubtask(v.ID, "a")
	f.svc.AddSubtask(v.ID, "b")
	f.svc.ToggleSubtask(a.ID)
	f.svc.AddComment(v.ID, 2, "looks good")

	got, err := f.svc.Get(v.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Subtasks) != 2 || got.CompletionRatio != 0.5 || got.CommentCount != 1 {
		t.Errorf("view = subtasks %d ratio %v comments %d", len(got.Subtasks), got.CompletionRatio, got.CommentCount)
	}
	if _, err := f.svc.Get(999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing task error = %v", err)
	}
}

func TestList_FiltersSortAndPages(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 5; i++ {
		opts := CreateOpts{Title: fmt.Sprintf("task %d", i)}
		if i%2 == 0 {
			opts.Priority = models.PriorityHigh
			opts.AssigneeID = uintPtr(7)
		}
		f.task(t, opts)
	}
	f.task(t, CreateOpts{Title: "bug: crash", Status: models.StatusInProgress})

	res, err := f.svc.List(f.ws.ID, ListFilters{SortBy: "title", SortDir: "asc", Size: 2, Page: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 6 || res.Pages != 3 || len(res.Records) != 2 {
		t.Fatalf("page = total %d pages %d records %d", res.Total, res.Pages, len(res.Records))
	}
	if res.Records[0].Title != "task 2" || res.Records[1].Title != "task 3" {
		t.Errorf("page 2 = %q, %q", res.Records[0].Title, res.Records[1].Title)
	}

	tests := []struct {
		name string
		f    ListFilters
		want int64
	}{
		{"priority", ListFilters{Priority: models.PriorityHigh}, 2},
		{"assignee", ListFilters{AssigneeID: uintPtr(7)}, 2},
		{"status", ListFilters{Status: models.StatusInProgress}, 1},
		{"keyword", ListFilters{Keyword: "crash"}, 1},
		{"all", ListFilters{}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.List(f.ws.ID, tt.f)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if res.Total != tt.want {
				t.Errorf("Total = %d, want %d", res.Total, tt.want)
			}
		})
	}

	if _, err := f.svc.List(f.ws.ID, ListFilters{SortBy: "color"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("bad sort error = %v", err)
	}
}

func TestUpdate_RecordsChangedFieldsOnly(t *testing.T) {
	f := newFixture(t)
	v := f.task(t, CreateOpts{Title: "old", Priority: models.PriorityLow})
	due := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	got, err := f.svc.Update(v.ID, actor, UpdateOpts{
		Title:    strPtr("new"),
		Priority: strPtr(models.PriorityLow),
		DueDate:  &due,
		Progress: intPtr(40),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "new" || got.Progress != 40 || got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("task = %+v", got.Task)
	}

	rows := f.history(t, v.ID)
	if n := actions(rows)[audit.ActionUpdate]; n != 3 {
		t.Errorf("UPDATE entries = %d, want 3 (title, dueDate, progress)", n)
	}
	if findField(rows, audit.ActionUpdate, "priority") != nil {
		t.Error("unchanged priority was recorded")
	}
	title := findField(rows, audit.ActionUpdate, "title")
	if title == nil || *title.OldValue != "old" || *title.NewValue != "new" {
		t.Errorf("title entry = %+v", title)
	}
	dueEntry := findField(rows, audit.ActionUpdate, "dueDate")
	if dueEntry == nil || dueEntry.OldValue != nil || *dueEntry.NewValue != "2026-07-01T09:00:00Z" {
		t.Errorf("dueDate entry = %+v", dueEntry)
	}

	before := len(f.history(t, v.ID))
	if _, err := f.svc.Update(v.ID, actor, UpdateOpts{Title: strPtr("new")}); err != nil {
		t.Fatalf("no-op Update: %v", err)
	}
	if after := len(f.history(t, v.ID)); after != before {
		t.Errorf("no-op update added %d entries", after-before)
	}
}

func TestUpdate_Validation(t *testing.T) {
	f := newFixture(t)
	parent := f.task(t, CreateOpts{Title: "parent"})
	child := f.task(t, CreateOpts{Title: "child", ParentTaskID: &parent.ID})

	tests := []struct {
		name string
		id   uint
		opts UpdateOpts
		want error
	}{
		{"missing", 999, UpdateOpts{Title: strPtr("x")}, apperr.ErrNotFound},
		{"blank title", child.ID, UpdateOpts{Title: strPtr("")}, apperr.ErrInvalidArgument},
		{"bad priority", child.ID, UpdateOpts{Priority: strPtr("NOW")}, apperr.ErrInvalidArgument},
		{"progress too high", child.ID, UpdateOpts{Progress: intPtr(101)}, apperr.ErrInvalidArgument},
		{"own parent", child.ID, UpdateOpts{ParentTaskID: &child.ID}, apperr.ErrInvalidArgument},
		{"parent cycle", parent.ID, UpdateOpts{ParentTaskID: &child.ID}, apperr.ErrCycleDetected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Update(tt.id, actor, tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdate_AssigneeNotifications(t *testing.T) {
	f := newFixture(t)
	v := f.task(t, CreateOpts{Title: "t"})

	if _, err := f.svc.Update(v.ID, actor, UpdateOpts{AssigneeID: uintPtr(3)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	n := f.notifications(t, 3)
	if len(n) != 1 || n[0].Type != models.NotifyTaskAssigned {
		t.Fatalf("after assign = %+v", n)
	}

	if _, err := f.svc.Update(v.ID, actor, UpdateOpts{Title: strPtr("renamed")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	n = f.notifications(t, 3)
	if len(n) != 2 || n[0].Type != models.NotifyTaskUpdated {
		t.Errorf("after edit = %+v", n)
	}
}

func TestAssigneeZeroMeansUnassigned(t *testing.T) {
	f := newFixture(t)
	v := f.task(t, CreateOpts{Title: "nobody", AssigneeID: uintPtr(0)})
	if v.AssigneeID != nil {
		t.Errorf("AssigneeID = %d, want nil", *v.AssigneeID)
	}
	if n := f.notifications(t, 0); len(n) != 0 {
		t.Errorf("notifications for user 0 = %+v", n)
	}

	assigned := f.task(t, CreateOpts{Title: "bob's", AssigneeID: uintPtr(2)})
	got, err := f.svc.Update(assigned.ID, actor, UpdateOpts{AssigneeID: uintPtr(0)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.AssigneeID != nil {
		t.Errorf("AssigneeID = %d after clearing, want nil", *got.AssigneeID)
	}
	var raw models.Task
	if err := f.db.First(&raw, assigned.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if raw.AssigneeID != nil {
		t.Errorf("stored assignee_id = %d, want NULL", *raw.AssigneeID)
	}
	e := findField(f.history(t, assigned.ID), audit.ActionUpdate, "assigneeId")
	if e == nil || e.OldValue == nil || *e.OldValue != "2" || e.NewValue != nil {
		t.Errorf("assigneeId entry = %+v", e)
	}
	if n := f.notifications(t, 2); len(n) != 1 {
		t.Errorf("bob notifications = %d, want only the assignment", len(n))
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	v := f.task(t, CreateOpts{Title: "t"})

	got, err := f.svc.UpdateStatus(v.ID, actor, models.StatusDone)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != models.StatusDone {
		t.Errorf("Status = %q", got.Status)
	}
	if _, err := f.svc.UpdateStatus(v.ID, actor, models.StatusDone); err != nil {
		t.Fatalf("repeat UpdateStatus: %v", err)
	}

	rows := f.history(t, v.ID)
	if n := actions(rows)[audit.ActionStatusChange]; n != 1 {
		t.Errorf("STATUS_CHANGE entries = %d, want 1", n)
	}
	e := findField(rows, audit.ActionStatusChange, "status")
	if e == nil || *e.OldValue != models.StatusTodo || *e.NewValue != models.StatusDone {
		t.Errorf("entry = %+v", e)
	}

	if _, err := f.svc.UpdateStatus(v.ID, actor, ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("blank status error = %v", err)
	}
}

func TestMove_KeepsPositionWithoutRenumbering(t *testing.T) {
	f := newFixture(t)
	b := f.board(t)
	x, y := b.Columns[0].ID, b.Columns[1].ID
	f.task(t, CreateOpts{Title: "x0", BoardColumnID: &x})
	f.task(t, CreateOpts{Title: "x1", BoardColumnID: &x})
	moving := f.task(t, CreateOpts{Title: "x2", BoardColumnID: &x})
	var ys []*View
	for i := 0; i < 4; i++ {
		ys = append(ys, f.task(t, CreateOpts{Title: fmt.Sprintf("y%d", i), BoardColumnID: &y}))
	}

	sub := f.hub.Subscribe(broadcast.TaskTopic(f.ws.ID))
	defer sub.Close()

	got, err := f.svc.Move(moving.ID, actor, MoveOpts{ColumnID: &y})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got.Position != 2 || *got.BoardColumnID != y {
		t.Errorf("moved task = col %v pos %d", got.BoardColumnID, got.Position)
	}
	for i, yt := range ys {
		reloaded, _ := f.svc.Get(yt.ID)
		if reloaded.Position != i {
			t.Errorf("y%d renumbered to %d", i, reloaded.Position)
		}
	}

	rows := f.history(t, moving.ID)
	col := findField(rows, audit.ActionMove, "boardColumnId")
	if col == nil || *col.OldValue != fmt.Sprint(x) || *col.NewValue != fmt.Sprint(y) {
		t.Errorf("column MOVE entry = %+v", col)
	}
	if findField(rows, audit.ActionMove, "position") != nil {
		t.Error("unchanged position was recorded")
	}
	if ev := nextEvent(t, sub); ev.Type != broadcast.TaskMoved {
		t.Errorf("event type = %q", ev.Type)
	}
}

func TestMove_WithPositionAndOffBoard(t *testing.T) {
	f := newFixture(t)
	b := f.board(t)
	x, y := b.Columns[0].ID, b.Columns[1].ID
	f.task(t, CreateOpts{Title: "x0", BoardColumnID: &x})
	v := f.task(t, CreateOpts{Title: "x1", BoardColumnID: &x})

	got, err := f.svc.Move(v.ID, actor, MoveOpts{ColumnID: &y, Position: intPtr(0)})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got.Position != 0 {
		t.Errorf("Position = %d, want 0", got.Position)
	}
	pos := findField(f.history(t, v.ID), audit.ActionMove, "position")
	if pos == nil || *pos.OldValue != "1" || *pos.NewValue != "0" {
		t.Errorf("position MOVE entry = %+v", pos)
	}

	got, err = f.svc.Move(v.ID, actor, MoveOpts{Position: intPtr(3)})
	if err != nil {
		t.Fatalf("Move within column: %v", err)
	}
	if got.BoardColumnID == nil || *got.BoardColumnID != y || got.Position != 3 {
		t.Errorf("without a column = col %v pos %d, want column %d pos 3", got.BoardColumnID, got.Position, y)
	}

	got, err = f.svc.Move(v.ID, actor, MoveOpts{ColumnID: uintPtr(0)})
	if err != nil {
		t.Fatalf("Move off board: %v", err)
	}
	if got.BoardColumnID != nil {
		t.Errorf("BoardColumnID = %d, want nil", *got.BoardColumnID)
	}
	colEntry := findField(f.history(t, v.ID), audit.ActionMove, "boardColumnId")
	if colEntry == nil || colEntry.NewValue != nil {
		t.Errorf("latest column entry = %+v, want nil new value", colEntry)
	}
}

func TestMove_Errors(t *testing.T) {
	f := newFixture(t)
	b := f.board(t)
	x := b.Columns[0].ID
	v := f.task(t, CreateOpts{Title: "t", BoardColumnID: &x})
	other, _ := f.svc.CreateWorkspace("Other", actor)
	otherBoard, _ := f.svc.CreateBoard(other.ID, actor, "B", "")

	if _, err := f.svc.Move(999, actor, MoveOpts{ColumnID: &x}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing task error = %v", err)
	}
	if _, err := f.svc.Move(v.ID, actor, MoveOpts{ColumnID: uintPtr(999)}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing column error = %v", err)
	}
	if _, err := f.svc.Move(v.ID, actor, MoveOpts{ColumnID: &otherBoard.Columns[0].ID}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("foreign column error = %v", err)
	}
	if _, err := f.svc.Move(v.ID, actor, MoveOpts{ColumnID: &x, Position: intPtr(-2)}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("negative position error = %v", err)
	}
}

func TestReorderTasks_AuditsChangedPositions(t *testing.T) {
	f := newFixture(t)
	b := f.board(t)
	x := b.Columns[0].ID
	a := f.task(t, CreateOpts{Title: "a", BoardColumnID: &x})
	c := f.task(t, CreateOpts{Title: "c", BoardColumnID: &x})

	results, err := f.svc.ReorderTasks(x, actor, []position.Item{
		{ID: a.ID, Position: 1},
		{ID: c.ID, Position: 1},
	})
	if err != nil {
		t.Fatalf("ReorderTasks: %v", err)
	}
	if len(results) != 2 || !results[0].Applied || !results[1].Applied {
		t.Fatalf("results = %+v", results)
	}
	if e := findField(f.history(t, a.ID), audit.ActionMove, "position"); e == nil || *e.OldValue != "0" || *e.NewValue != "1" {
		t.Errorf("a entry = %+v", e)
	}
	if e := findField(f.history(t, c.ID), audit.ActionMove, "position"); e != nil {
		t.Errorf("c kept position 1 but got entry %+v", e)
	}

	if _, err := f.svc.ReorderTasks(999, actor, []position.Item{{ID: a.ID}}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing column error = %v", err)
	}
}

func TestDelete_SoftDeleteKeepsHistory(t *testing.T) {
	f := newFixture(t)
	v := f.task(t, CreateOpts{Title: "doomed"})
	sub := f.hub.Subscribe(broadcast.TaskTopic(f.ws.ID))
	defer sub.Close()

	if err := f.svc.Delete(v.ID, actor); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(v.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete error = %v", err)
	}
	var raw models.Task
	if err := f.db.Unscoped().First(&raw, v.ID).Error; err != nil {
		t.Fatalf("row should remain: %v", err)
	}
	rows := f.history(t, v.ID)
	if rows[0].Action != audit.ActionDelete {
		t.Errorf("latest action = %q, want DELETE", rows[0].Action)
	}
	if ev := nextEvent(t, sub); ev.Type != broadcast.TaskDeleted {
		t.Errorf("event type = %q", ev.Type)
	}
	if err := f.svc.Delete(v.ID, actor); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}
