package engine

import "github.com/archwright/enginepool/internal/enginecore"

// poolEngine is the contract shared by FixedEngine, CachedEngine, and
// ActiveEngine. Pool selects exactly one implementation at construction
// and forwards every operation to it.
type poolEngine interface {
	start()
	submit(work enginecore.Task) error
	close()

	currentWorkerCount() int64
	idleWorkerCount() int64
	pendingTaskCount() int64
}

// Metric instrument names shared across engines.
const (
	metricCurrentWorkers = "engine_current_workers"
	metricIdleWorkers    = "engine_idle_workers"
	metricPendingTasks   = "engine_pending_tasks"
	metricTasksSubmitted = "engine_tasks_submitted_total"
	metricTasksExecuted  = "engine_tasks_executed_total"
	metricTaskDuration   = "engine_task_duration_seconds"
	metricWorkersSpawned = "engine_workers_spawned_total"
	metricWorkersRetired = "engine_workers_retired_total"
)

var (
	_ poolEngine = (*fixedEngine)(nil)
	_ poolEngine = (*cachedEngine)(nil)
	_ poolEngine = (*activeEngine)(nil)
)
