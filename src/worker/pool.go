package worker

import (
	"context"
	"image"
	"runtime"
	"sync"

	"artifact-scanner/src/logutil"
	"artifact-scanner/src/ocr"
)

// Task is one region to recognize.
type Task struct {
	ID    string
	Image image.Image
}

// Outcome is the result of the task at the same index.
type Outcome struct {
	ID     string
	Result ocr.Result
	Err    error
}

// Pool is a fixed-size recognition pool. Do blocks until every task of the
// call has an outcome, so its queue never holds work from two calls.
type Pool struct {
	rec  ocr.Recognizer
	jobs chan job
	wg   sync.WaitGroup

	closeOnce sync.Once
}

type job struct {
	ctx  context.Context
	task Task
	out  *Outcome
	done *sync.WaitGroup
}

// New creates a pool over rec. Size defaults to NumCPU when size<=0.
func New(size int, rec ocr.Recognizer) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{rec: rec, jobs: make(chan job, size)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				res, err := recognizeWithContext(j.ctx, p.rec, j.task.Image)
				*j.out = Outcome{ID: j.task.ID, Result: res, Err: err}
				j.done.Done()
			}
		}()
	}
}

// Do recognizes every task and returns outcomes in task order, whatever
// order the workers finish in. If ctx ends before a task is dispatched the
// task's outcome carries ctx.Err().
func (p *Pool) Do(ctx context.Context, tasks []Task) []Outcome {
	out := make([]Outcome, len(tasks))
	var done sync.WaitGroup
	for i := range tasks {
		if err := ctx.Err(); err != nil {
			out[i] = Outcome{ID: tasks[i].ID, Err: err}
			continue
		}
		done.Add(1)
		select {
		case p.jobs <- job{ctx: ctx, task: tasks[i], out: &out[i], done: &done}:
		case <-ctx.Done():
			done.Done()
			out[i] = Outcome{ID: tasks[i].ID, Err: ctx.Err()}
		}
	}
	done.Wait()

	logutil.Debug(logutil.Fields{"tasks": len(tasks)}, "worker: batch joined")
	return out
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}

// recognizeWithContext returns when ctx ends even if the backend call does
// not. The backend call finishes in the background, so a recognizer closed
// after a timeout may still have calls running.
func recognizeWithContext(ctx context.Context, rec ocr.Recognizer, img image.Image) (ocr.Result, error) {
	if ctx.Done() == nil {
		return rec.Recognize(ctx, img)
	}
	type result struct {
		res ocr.Result
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		res, err := rec.Recognize(ctx, img)
		resCh <- result{res, err}
	}()
	select {
	case r := <-resCh:
		return r.res, r.err
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	}
}
