package task

import (
	"testing"
	"time"

	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/db"
	"github.com/zulandar/taskflow/internal/logging"
	"github.com/zulandar/taskflow/internal/models"
	"gorm.io/gorm"
)

type fixture struct {
	svc *Service
	db  *gorm.DB
	hub *broadcast.Hub
	ws  *models.Workspace
}

const actor uint = 1

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	log := logging.Discard()
	hub := broadcast.NewHub(log)
	svc := New(gormDB, hub, log)
	ws, err := svc.CreateWorkspace("Acme", actor)
	if err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}
	return &fixture{svc: svc, db: gormDB, hub: hub, ws: ws}
}

func (f *fixture) board(t *testing.T) *BoardView {
	t.Helper()
	b, err := f.svc.CreateBoard(f.ws.ID, actor, "Sprint", "")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	return b
}

func (f *fixture) task(t *testing.T, opts CreateOpts) *View {
	t.Helper()
	v, err := f.svc.Create(f.ws.ID, actor, opts)
	if err != nil {
		t.Fatalf("Create %q: %v", opts.Title, err)
	}
	return v
}

func (f *fixture) history(t *testing.T, taskID uint) []models.TaskActivity {
	t.Helper()
	rows, err := f.svc.Audit().History(taskID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	return rows
}

func (f *fixture) notifications(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	out, err := f.svc.Notifications().List(userID, false)
	if err != nil {
		t.Fatalf("List notifications: %v", err)
	}
	return out
}

func nextEvent(t *testing.T, sub *broadcast.Subscription) broadcast.Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return broadcast.Event{}
}

func uintPtr(v uint) *uint { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func actions(rows []models.TaskActivity) map[string]int {
	out := map[string]int{}
	for _, r := range rows {
		out[r.Action]++
	}
	return out
}

func findField(rows []models.TaskActivity, action, field string) *models.TaskActivity {
	for i := range rows {
		if rows[i].Action == action && rows[i].FieldName == field {
			return &rows[i]
		}
	}
	return nil
}
