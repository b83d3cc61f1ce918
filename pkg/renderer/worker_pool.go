package renderer

import (
	"runtime"
	"sync"
)

// renderPhase selects the work a row task performs
type renderPhase int

const (
	phasePrimal   renderPhase = iota // Trace and splat into the film
	phaseBackward                    // Replay primal paths and backpropagate
)

// rowTask represents one film row of one pass for the worker pool
type rowTask struct {
	taskID   int
	y        int
	passSeed int64
	spp      int
	phase    renderPhase
}

// rowResult contains the result from rendering a row
type rowResult struct {
	taskID  int
	touched bool // Whether any lane's tape reached a differentiable parameter
	err     error
}

// workerPool manages parallel row rendering
type workerPool struct {
	taskQueue   chan rowTask
	resultQueue chan rowResult
	numWorkers  int
	wg          sync.WaitGroup
	renderer    *TransientRenderer
}

// newWorkerPool creates a worker pool with the specified number of workers
func newWorkerPool(renderer *TransientRenderer, rows, numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &workerPool{
		taskQueue:   make(chan rowTask, rows),
		resultQueue: make(chan rowResult, rows),
		numWorkers:  numWorkers,
		renderer:    renderer,
	}
}

// start begins all workers
func (wp *workerPool) start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run(&wp.wg)
	}
}

// stop gracefully shuts down all workers
func (wp *workerPool) stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// submitTask submits a row task to the worker pool
func (wp *workerPool) submitTask(task rowTask) {
	wp.taskQueue <- task
}

// getResult retrieves a completed row result
func (wp *workerPool) getResult() (rowResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// run is the main worker loop
func (wp *workerPool) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range wp.taskQueue {
		var result rowResult
		result.taskID = task.taskID

		switch task.phase {
		case phasePrimal:
			result.err = wp.renderer.renderRowPrimal(task.y, task.passSeed, task.spp)
		case phaseBackward:
			result.touched, result.err = wp.renderer.renderRowBackward(task.y, task.passSeed, task.spp)
		}

		wp.resultQueue <- result
	}
}
