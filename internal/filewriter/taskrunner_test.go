package filewriter

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskRunner_RunsTasksInOrder(t *testing.T) {
	runner := NewTaskRunner()
	defer runner.Stop()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		runner.PostTask(func() { order = append(order, i) })
	}
	runner.Flush()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestTaskRunner_FlushWaitsForEarlierTasks(t *testing.T) {
	runner := NewTaskRunner()
	defer runner.Stop()

	var done atomic.Bool
	runner.PostTask(func() { done.Store(true) })
	runner.Flush()

	assert.True(t, done.Load())
}

func TestTaskRunner_StopDrainsQueue(t *testing.T) {
	runner := NewTaskRunner()

	var count atomic.Int32
	for i := 0; i < 20; i++ {
		runner.PostTask(func() { count.Add(1) })
	}
	runner.Stop()

	assert.Equal(t, int32(20), count.Load())
}
