package db

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zulandar/taskflow/internal/config"
	"github.com/zulandar/taskflow/internal/models"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		host     string
		port     int
		database string
		want     string
	}{
		{
			name:     "default local",
			user:     "root",
			host:     "127.0.0.1",
			port:     3306,
			database: "taskflow",
			want:     "root@tcp(127.0.0.1:3306)/taskflow?parseTime=true&loc=UTC",
		},
		{
			name:     "custom host and port",
			user:     "tf",
			host:     "10.0.0.5",
			port:     3307,
			database: "taskflow_prod",
			want:     "tf@tcp(10.0.0.5:3307)/taskflow_prod?parseTime=true&loc=UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DSN(tt.user, tt.host, tt.port, tt.database)
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAllModels_Count(t *testing.T) {
	if got := len(AllModels()); got != 12 {
		t.Errorf("AllModels() returned %d models, want 12", got)
	}
}

func TestAllModels_Types(t *testing.T) {
	want := []string{
		"*models.Workspace",
		"*models.Board",
		"*models.BoardColumn",
		"*models.Task",
		"*models.Subtask",
		"*models.Comment",
		"*models.TaskDependency",
		"*models.TaskActivity",
		"*models.Notification",
		"*models.WorkspaceMember",
		"*models.Label",
		"*models.TaskLabel",
	}
	for i, m := range AllModels() {
		got := typeName(m)
		if got != want[i] {
			t.Errorf("AllModels()[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func TestOpenMemory_MigratesAllTables(t *testing.T) {
	gormDB, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	for _, m := range AllModels() {
		if !gormDB.Migrator().HasTable(m) {
			t.Errorf("table for %s not created", typeName(m))
		}
	}
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tf.db")
	gormDB, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := AutoMigrate(gormDB); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	ws := models.Workspace{Name: "acme", OwnerID: 1}
	if err := gormDB.Create(&ws).Error; err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	if ws.ID == 0 {
		t.Error("expected auto-increment ID")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if !strings.Contains(err.Error(), "unsupported driver") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "unsupported driver")
	}
}

func TestSoftDelete_HidesTask(t *testing.T) {
	gormDB, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	task := models.Task{WorkspaceID: 1, Title: "gone soon", CreatorID: 1}
	if err := gormDB.Create(&task).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := gormDB.Delete(&task).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	gormDB.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	if count != 0 {
		t.Errorf("soft-deleted task visible in default scope, count = %d", count)
	}
	gormDB.Unscoped().Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	if count != 1 {
		t.Errorf("soft-deleted row should be retained, unscoped count = %d", count)
	}
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
