// Package tasks provides a sharded background task dispatcher. Tasks
// enqueued under the same key always run on the same shard goroutine,
// so writes for one visitor are applied in submission order while
// different visitors proceed in parallel.
package tasks

import (
	"hash/fnv"
	"sync"

	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
)

// Task is one unit of background work.
type Task func()

// Dispatcher fans tasks out to a fixed set of shard goroutines keyed
// by a hash of the task key.
type Dispatcher struct {
	shards  []chan Task
	wg      sync.WaitGroup
	logger  *logging.ChanneledLogger
	closeMu sync.Mutex
	closed  bool
}

// NewDispatcher starts shardCount worker goroutines, each draining its
// own bounded queue of queueDepth tasks.
func NewDispatcher(shardCount, queueDepth int, logger *logging.ChanneledLogger) *Dispatcher {
	if shardCount < 1 {
		shardCount = 1
	}
	if queueDepth < 1 {
		queueDepth = 1
	}

	d := &Dispatcher{
		shards: make([]chan Task, shardCount),
		logger: logger,
	}

	for i := range d.shards {
		d.shards[i] = make(chan Task, queueDepth)
		d.wg.Add(1)
		go d.runShard(i)
	}

	logger.System().Info("Task dispatcher started",
		"shards", shardCount,
		"queueDepth", queueDepth)
	return d
}

func (d *Dispatcher) runShard(index int) {
	defer d.wg.Done()
	for task := range d.shards[index] {
		d.execute(index, task)
	}
}

func (d *Dispatcher) execute(index int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.System().Error("Task panic recovered",
				"shard", index,
				"panic", r)
		}
	}()
	task()
}

// Enqueue submits a task under a key without blocking the caller. When
// the shard queue is full the task is dropped and logged, never queued
// out of order or retried.
func (d *Dispatcher) Enqueue(key string, task Task) bool {
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		d.logger.System().Debug("Task rejected after shutdown", "key", key)
		return false
	}
	shard := d.shardFor(key)
	select {
	case d.shards[shard] <- task:
		d.closeMu.Unlock()
		return true
	default:
		d.closeMu.Unlock()
		d.logger.System().Error("Task queue full, dropping task",
			"key", key,
			"shard", shard)
		return false
	}
}

func (d *Dispatcher) shardFor(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.shards)))
}

// Close stops accepting new tasks, drains every shard queue, and waits
// for in-flight tasks to finish.
func (d *Dispatcher) Close() {
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		return
	}
	d.closed = true
	for _, shard := range d.shards {
		close(shard)
	}
	d.closeMu.Unlock()

	d.wg.Wait()
	d.logger.System().Info("Task dispatcher drained and stopped")
}
