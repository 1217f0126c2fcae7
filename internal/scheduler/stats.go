package scheduler

import (
	"math"

	"github.com/julianstephens/taskflow/internal/models"
)

// Stats summarizes task progress across projects. Estimated hours only
// count remaining work.
func (s *Scheduler) Stats(projects []models.Project) models.Stats {
	stats := models.Stats{TotalProjects: len(projects)}

	for _, project := range projects {
		incomplete := 0
		for _, task := range project.Tasks {
			stats.TotalTasks++
			if task.Completed {
				stats.CompletedTasks++
				continue
			}
			incomplete++
			stats.TotalEstimatedHours += task.EstimatedHours
		}

		if incomplete > 0 {
			stats.ActiveProjects++
		}
		// All but the one eligible task of a sequential chain are blocked.
		if project.HasSequentialTasks && incomplete > 1 {
			stats.BlockedTasks += incomplete - 1
		}
	}

	if stats.TotalTasks > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100))
	}
	return stats
}

// CompletionUpdate reports the next unlocked task and whether the project
// is finished. project must already reflect the completed task.
func (s *Scheduler) CompletionUpdate(project models.Project) models.CompletionUpdate {
	incomplete := project.IncompleteTasks()

	if !project.HasSequentialTasks {
		return models.CompletionUpdate{ProjectCompleted: len(incomplete) == 0}
	}

	sortByOrder(incomplete)
	update := models.CompletionUpdate{ProjectCompleted: len(incomplete) == 0}
	if len(incomplete) > 0 {
		next := incomplete[0]
		update.NextTaskUnlocked = &next
	}
	return update
}
