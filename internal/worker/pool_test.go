package worker_test

import (
	"sync/atomic"
	"testing"
	"time"

	"collabs/internal/worker"

	"github.com/stretchr/testify/assert"
)

func TestPool_ExecutesSubmittedJobs(t *testing.T) {
	// Arrange
	pool := worker.NewPool(4, 16)
	var done int32

	// Act
	for i := 0; i < 10; i++ {
		ok := pool.Submit(func() {
			atomic.AddInt32(&done, 1)
		})
		assert.True(t, ok)
	}
	pool.Shutdown()

	// Assert: Shutdown дожидается всех принятых задач
	assert.Equal(t, int32(10), atomic.LoadInt32(&done))
}

func TestPool_SubmitAfterShutdownIsRejected(t *testing.T) {
	// Arrange
	pool := worker.NewPool(1, 1)
	pool.Shutdown()

	// Act
	ok := pool.Submit(func() {})

	// Assert
	assert.False(t, ok)
}

func TestPool_RejectsWhenBufferFull(t *testing.T) {
	// Arrange: один воркер, занятый медленной задачей, и буфер на одну задачу
	pool := worker.NewPool(1, 1)
	block := make(chan struct{})
	started := make(chan struct{})

	pool.Submit(func() {
		close(started)
		<-block
	})
	<-started

	// Заполняем буфер
	assert.True(t, pool.Submit(func() {}))

	// Act: третья задача не помещается
	ok := pool.Submit(func() {})

	// Assert
	assert.False(t, ok)

	close(block)
	pool.Shutdown()
}

func TestPool_PanickingJobDoesNotKillWorker(t *testing.T) {
	// Arrange
	pool := worker.NewPool(1, 4)
	var done int32

	// Act
	pool.Submit(func() { panic("boom") })
	pool.Submit(func() { atomic.AddInt32(&done, 1) })

	// Даем воркеру обработать обе задачи
	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&done) == 0 {
		select {
		case <-deadline:
			t.Fatal("job after panic was never executed")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	pool.Shutdown()

	// Assert
	assert.Equal(t, int32(1), atomic.LoadInt32(&done))
}
