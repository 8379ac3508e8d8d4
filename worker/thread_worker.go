package worker

// Task is a caller-supplied unit of work run by a ThreadWorker.
type Task func() (any, error)

// ThreadWorker runs a Task on a dedicated goroutine and reports its
// outcome through a Future. Used for the asynchronous variants of
// InitHub, SyncHub, AddDevice, UpdateDevice, and DeleteDevice.
type ThreadWorker struct {
	name string
	task Task
}

// NewThreadWorker constructs a ThreadWorker around task, labeled name
// for logging.
func NewThreadWorker(name string, task Task) *ThreadWorker {
	return &ThreadWorker{name: name, task: task}
}

// Start launches the task on a new goroutine and returns its Future
// immediately; the task continues running after Start returns.
func (w *ThreadWorker) Start() *Future {
	future := newFuture(w.name)
	go func() {
		result, err := w.task()
		future.complete(result, err)
	}()
	return future
}

// Run executes the task synchronously on the calling goroutine and
// returns its Future already completed, with no goroutine hop.
func (w *ThreadWorker) Run() *Future {
	future := newFuture(w.name)
	result, err := w.task()
	future.complete(result, err)
	return future
}
