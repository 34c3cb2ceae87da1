package task

import (
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/dependency"
	"github.com/zulandar/taskflow/internal/models"
)

// AddDependency adds predecessor→successor on behalf of task selfID and
// publishes the successor.
func (s *Service) AddDependency(selfID, actorID uint, opts dependency.AddOpts) (*models.TaskDependency, error) {
	edge, err := s.graph.AddEdge(selfID, opts)
	if err != nil {
		return nil, err
	}
	s.log.WithField("predecessor", edge.PredecessorTaskID).
		WithField("successor", edge.SuccessorTaskID).
		WithField("actor_id", actorID).
		Debug("task: dependency added")
	s.publishEdge(broadcast.DependencyAdded, edge.SuccessorTaskID, edge)
	return edge, nil
}

// RemoveDependency deletes the exact predecessor→successor edge.
func (s *Service) RemoveDependency(predecessorID, successorID uint) error {
	if err := s.graph.RemoveEdge(predecessorID, successorID); err != nil {
		return err
	}
	s.publishEdge(broadcast.DependencyRemoved, successorID, &models.TaskDependency{
		PredecessorTaskID: predecessorID,
		SuccessorTaskID:   successorID,
	})
	return nil
}

func (s *Service) publishEdge(eventType string, successorID uint, edge *models.TaskDependency) {
	t, err := s.loadTask(successorID)
	if err != nil {
		s.log.WithError(err).WithField("task_id", successorID).Warn("task: load successor for publish failed")
		return
	}
	s.bus.PublishTaskUpdate(t.WorkspaceID, eventType, edge)
}
