package filewriter

// TaskRunner executes posted tasks in order on a single background
// goroutine. It stands in for a blocking-capable sequenced worker: callers
// post I/O work here instead of blocking their own goroutine.
type TaskRunner struct {
	tasks chan func()
	done  chan struct{}
}

func NewTaskRunner() *TaskRunner {
	t := &TaskRunner{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *TaskRunner) loop() {
	for task := range t.tasks {
		task()
	}
	close(t.done)
}

// PostTask enqueues a task. Must not be called after Stop.
func (t *TaskRunner) PostTask(task func()) {
	t.tasks <- task
}

// Flush blocks until every task posted before it has run.
func (t *TaskRunner) Flush() {
	barrier := make(chan struct{})
	t.PostTask(func() { close(barrier) })
	<-barrier
}

// Stop drains the queue and stops the background goroutine. Blocks until
// all previously posted tasks have completed.
func (t *TaskRunner) Stop() {
	close(t.tasks)
	<-t.done
}
