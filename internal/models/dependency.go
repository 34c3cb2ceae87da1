package models

import "time"

// Dependency types between two tasks.
const (
	DepFinishToStart  = "FINISH_TO_START"
	DepStartToStart   = "START_TO_START"
	DepFinishToFinish = "FINISH_TO_FINISH"
	DepStartToFinish  = "START_TO_FINISH"
)

// TaskDependency is a directed edge: the predecessor must finish before the
// successor starts. At most one edge exists per ordered pair.
type TaskDependency struct {
	PredecessorTaskID uint      `gorm:"primaryKey;autoIncrement:false" json:"predecessorTaskId"`
	SuccessorTaskID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"successorTaskId"`
	DependencyType    string    `gorm:"size:32;default:FINISH_TO_START" json:"dependencyType"`
	CreatedAt         time.Time `json:"createdAt"`

	Predecessor Task `gorm:"foreignKey:PredecessorTaskID" json:"-"`
	Successor   Task `gorm:"foreignKey:SuccessorTaskID" json:"-"`
}
