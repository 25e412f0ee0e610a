package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/entities"
	"github.com/pawsitivecheck/syncconsole/internal/scheduler"
	"github.com/pawsitivecheck/syncconsole/internal/tasks"
)

// TasksController queues sync jobs outside a browser session and reports
// their progress.
type TasksController struct {
	queue     TaskQueue
	schedules ScheduleLister
	logger    *zap.Logger
}

// NewTasksController creates a new TasksController. schedules may be nil.
func NewTasksController(queue TaskQueue, schedules ScheduleLister, logger *zap.Logger) *TasksController {
	return &TasksController{queue: queue, schedules: schedules, logger: logger}
}

// TaskInfo is the JSON form of a queued task.
type TaskInfo struct {
	ID     string             `json:"id"`
	Queue  string             `json:"queue,omitempty"`
	Job    entities.SyncJobID `json:"job,omitempty"`
	Status string             `json:"status"`
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, tc.logger, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, TaskInfo{ID: taskID, Status: tasks.StatusString(status)})
}

// EnqueueSync handles POST /api/tasks/sync/:job
//
// The job runs on the shared coordinator through the task queue, so the call
// returns before the remote sync finishes.
func (tc *TasksController) EnqueueSync(c *gin.Context) {
	job, err := entities.ParseSyncJobID(c.Param("job"))
	if err != nil {
		respondError(c, http.StatusNotFound, "unknown_job", "unknown sync job")
		return
	}

	task := tasks.SyncJobTask{Job: job, Trigger: entities.SyncTriggerAPI}
	id, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, tc.logger, err, "enqueue sync task")
		return
	}

	respondAccepted(c, "task enqueued", TaskInfo{
		ID:     id,
		Queue:  task.Config().Name,
		Job:    job,
		Status: tasks.StatusString(backlite.TaskStatusPending),
	})
}

// ListSchedules handles GET /api/schedules
func (tc *TasksController) ListSchedules(c *gin.Context) {
	entries := []scheduler.Entry{}
	if tc.schedules != nil {
		entries = append(entries, tc.schedules.Entries()...)
	}
	c.JSON(http.StatusOK, gin.H{"schedules": entries})
}
