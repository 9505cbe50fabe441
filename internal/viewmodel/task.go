package viewmodel

import "context"

// Task is the handle returned by every asynchronous trigger. It completes
// after the trigger has written all of its state.
type Task struct {
	done chan struct{}
	err  error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// completedTask returns a task that is already done.
func completedTask(err error) *Task {
	t := newTask()
	t.finish(err)
	return t
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Done is closed when the task completes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx ends. It returns the
// trigger's error, or ctx.Err() if ctx ended first.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the trigger's error once the task is done, nil before that.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}
