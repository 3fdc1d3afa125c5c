package tracing

import (
	"sync"
)

// TaskTable is the table DBTracers write the completed tasks to.
const TaskTable = "trace_tasks"

// TaskEntry is a row of the trace_tasks table.
type TaskEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTime float64
	EndTime   float64
}

// A TableWriter stores entries in tables. A datarecording.DataRecorder is one.
type TableWriter interface {
	CreateTable(tableName string, sampleEntry any)
	InsertData(tableName string, entry any)
}

// DBTracer is a tracer that stores the completed tasks into a table.
type DBTracer struct {
	mu           sync.Mutex
	timeTeller   TimeTeller
	backend      TableWriter
	tracingTasks map[string]Task
}

// NewDBTracer creates a DBTracer and its table.
func NewDBTracer(timeTeller TimeTeller, backend TableWriter) *DBTracer {
	backend.CreateTable(TaskTable, TaskEntry{})

	return &DBTracer{
		timeTeller:   timeTeller,
		backend:      backend,
		tracingTasks: make(map[string]Task),
	}
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	task.StartTime = t.timeTeller.CurrentTime()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks[task.ID] = task
}

// EndTask marks the end of a task and writes it.
func (t *DBTracer) EndTask(task Task) {
	end := t.timeTeller.CurrentTime()

	t.mu.Lock()
	original, ok := t.tracingTasks[task.ID]
	delete(t.tracingTasks, task.ID)
	t.mu.Unlock()

	if !ok {
		return
	}

	t.backend.InsertData(TaskTable, TaskEntry{
		ID:        original.ID,
		ParentID:  original.ParentID,
		Kind:      original.Kind,
		What:      original.What,
		Location:  original.Where,
		StartTime: original.StartTime,
		EndTime:   end,
	})
}

// InFlight returns the number of tasks started and not ended.
func (t *DBTracer) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.tracingTasks)
}
