package meshing

import (
	"context"
	"fmt"
	"sync"

	"voxelmesh/internal/world"
)

// MeshJob represents a meshing job request
type MeshJob struct {
	Coord world.ChunkCoord
	// Tag is echoed in the result so callers can match it to their state.
	Tag uint64
	// Build produces the mesh. It runs on a pool worker.
	Build func() (*MeshBuffer, error)
	// Result channel - will be sent the result when done
	ResultChan chan<- MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord world.ChunkCoord
	Tag   uint64
	Mesh  *MeshBuffer
	Err   error
}

// WorkerPool manages goroutines for mesh generation
type WorkerPool struct {
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	workers = max(workers, 1)
	pool := &WorkerPool{
		jobQueue: make(chan MeshJob, max(queueSize, 1)),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start worker goroutines
	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// SubmitJob submits a mesh generation job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// worker is the worker goroutine that processes mesh jobs
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			mesh, err := runJob(job)
			result := MeshResult{
				Coord: job.Coord,
				Tag:   job.Tag,
				Mesh:  mesh,
				Err:   err,
			}

			// Send result back
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// runJob turns a panicking build into an error so one bad chunk cannot take
// a worker down.
func runJob(job MeshJob) (mesh *MeshBuffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			mesh = nil
			err = fmt.Errorf("meshing chunk %v: panic: %v", job.Coord, r)
		}
	}()
	return job.Build()
}

// Shutdown stops the workers and waits for them to exit. Queued jobs that
// have not started are dropped.
func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

// GetQueueLength returns the current number of jobs in the queue
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}
