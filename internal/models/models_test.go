package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestTask_Fields(t *testing.T) {
	typ := reflect.TypeOf(Task{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "WorkspaceID", "not null")
	assertGormTag(t, typ, "WorkspaceID", "index")
	assertGormTag(t, typ, "BoardColumnID", "index:idx_task_column_position")
	assertGormTag(t, typ, "Position", "index:idx_task_column_position")
	assertGormTag(t, typ, "Position", "not null")
	assertGormTag(t, typ, "Title", "not null")
	assertGormTag(t, typ, "Description", "type:text")
	assertGormTag(t, typ, "Status", "default:TODO")
	assertGormTag(t, typ, "Priority", "default:MEDIUM")
	assertGormTag(t, typ, "DueDate", "index")
	assertGormTag(t, typ, "DeletedAt", "index")

	assertFieldType(t, typ, "BoardColumnID", "*uint")
	assertFieldType(t, typ, "ParentTaskID", "*uint")
	assertFieldType(t, typ, "AssigneeID", "*uint")
	assertFieldType(t, typ, "StartDate", "*time.Time")
	assertFieldType(t, typ, "DueDate", "*time.Time")
	assertFieldType(t, typ, "DeletedAt", "gorm.DeletedAt")
}

func TestTask_Relations(t *testing.T) {
	typ := reflect.TypeOf(Task{})

	assertGormTag(t, typ, "Parent", "foreignKey:ParentTaskID")
	assertGormTag(t, typ, "Children", "foreignKey:ParentTaskID")
	assertGormTag(t, typ, "Subtasks", "foreignKey:TaskID")

	assertFieldType(t, typ, "Parent", "*models.Task")
	assertFieldType(t, typ, "Children", "[]models.Task")
	assertFieldType(t, typ, "Subtasks", "[]models.Subtask")
}

func TestTaskDependency_Fields(t *testing.T) {
	typ := reflect.TypeOf(TaskDependency{})

	assertGormTag(t, typ, "PredecessorTaskID", "primaryKey")
	assertGormTag(t, typ, "SuccessorTaskID", "primaryKey")
	assertGormTag(t, typ, "PredecessorTaskID", "autoIncrement:false")
	assertGormTag(t, typ, "SuccessorTaskID", "index")
	assertGormTag(t, typ, "DependencyType", "default:FINISH_TO_START")
	assertGormTag(t, typ, "Predecessor", "foreignKey:PredecessorTaskID")
	assertGormTag(t, typ, "Successor", "foreignKey:SuccessorTaskID")
}

func TestPositionedModels_ShareIndex(t *testing.T) {
	tests := []struct {
		typ    reflect.Type
		parent string
		index  string
	}{
		{reflect.TypeOf(BoardColumn{}), "BoardID", "index:idx_column_board_position"},
		{reflect.TypeOf(Task{}), "BoardColumnID", "index:idx_task_column_position"},
		{reflect.TypeOf(Subtask{}), "TaskID", "index:idx_subtask_task_position"},
	}
	for _, tt := range tests {
		assertGormTag(t, tt.typ, tt.parent, tt.index)
		assertGormTag(t, tt.typ, "Position", tt.index)
		assertFieldType(t, tt.typ, "Position", "int")
	}
}

func TestSoftDelete(t *testing.T) {
	soft := []reflect.Type{
		reflect.TypeOf(Workspace{}),
		reflect.TypeOf(Board{}),
		reflect.TypeOf(Task{}),
		reflect.TypeOf(Comment{}),
		reflect.TypeOf(Label{}),
	}
	for _, typ := range soft {
		assertFieldType(t, typ, "DeletedAt", "gorm.DeletedAt")
	}
	hard := []reflect.Type{
		reflect.TypeOf(BoardColumn{}),
		reflect.TypeOf(Subtask{}),
		reflect.TypeOf(TaskDependency{}),
		reflect.TypeOf(TaskActivity{}),
		reflect.TypeOf(Notification{}),
		reflect.TypeOf(WorkspaceMember{}),
		reflect.TypeOf(TaskLabel{}),
	}
	for _, typ := range hard {
		if _, ok := typ.FieldByName("DeletedAt"); ok {
			t.Errorf("%s should be hard-deleted", typ.Name())
		}
	}
}

func TestTaskActivity_Fields(t *testing.T) {
	typ := reflect.TypeOf(TaskActivity{})

	assertGormTag(t, typ, "TaskID", "index:idx_activity_task_created")
	assertGormTag(t, typ, "CreatedAt", "index:idx_activity_task_created")
	assertGormTag(t, typ, "Action", "not null")
	assertGormTag(t, typ, "OldValue", "type:text")

	assertFieldType(t, typ, "OldValue", "*string")
	assertFieldType(t, typ, "NewValue", "*string")
}

func TestNotification_Fields(t *testing.T) {
	typ := reflect.TypeOf(Notification{})

	assertGormTag(t, typ, "UserID", "index:idx_notification_user_read")
	assertGormTag(t, typ, "Read", "index:idx_notification_user_read")
	assertGormTag(t, typ, "Read", "default:false")
	assertFieldType(t, typ, "ReferenceID", "*uint")
}

func TestBoard_Columns(t *testing.T) {
	typ := reflect.TypeOf(Board{})
	assertGormTag(t, typ, "Columns", "foreignKey:BoardID")
	assertFieldType(t, typ, "Columns", "[]models.BoardColumn")
	assertFieldType(t, reflect.TypeOf(BoardColumn{}), "WIPLimit", "*int")
}

func TestWorkspaceMember_UniquePerUser(t *testing.T) {
	typ := reflect.TypeOf(WorkspaceMember{})

	assertGormTag(t, typ, "WorkspaceID", "uniqueIndex:idx_member_workspace_user")
	assertGormTag(t, typ, "UserID", "uniqueIndex:idx_member_workspace_user")
	assertGormTag(t, typ, "Role", "default:MEMBER")
	assertGormTag(t, typ, "JoinedAt", "autoCreateTime")
}

func TestLabel_Fields(t *testing.T) {
	typ := reflect.TypeOf(Label{})
	assertGormTag(t, typ, "WorkspaceID", "index")
	assertGormTag(t, typ, "Name", "not null")
	assertFieldType(t, typ, "DeletedAt", "gorm.DeletedAt")

	link := reflect.TypeOf(TaskLabel{})
	assertGormTag(t, link, "TaskID", "primaryKey")
	assertGormTag(t, link, "LabelID", "primaryKey")
	assertGormTag(t, link, "Label", "foreignKey:LabelID")
}
