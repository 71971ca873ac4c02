package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type Job struct {
	Message Message
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing notification", "worker_id", w.ID, "message_id", job.Message.ID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	MaxWorkers  int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher delivers messages on a fixed pool of workers fed from a bounded queue.
type Dispatcher struct {
	sender      Sender
	sendTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once

	draining     chan struct{}
	dispatchDone chan struct{}
	closed       atomic.Bool
	shutdownOnce sync.Once
}

func NewDispatcher(sender Sender, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		sender:      sender,
		sendTimeout: sendTimeout,
		logger:      logger,

		maxWorkers:   maxWorkers,
		jobQueue:     make(chan Job, queueSize),
		workerPool:   make(chan chan Job, maxWorkers),
		ctx:          ctx,
		cancel:       cancel,
		draining:     make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}

	d.start()

	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.process)
		}

		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

// Enqueue never blocks. It reports false when the queue is full or the dispatcher is shutting down.
func (d *Dispatcher) Enqueue(msg Message) bool {
	if d.closed.Load() {
		d.logger.Warn("notification dropped, dispatcher is shutting down", "message_id", msg.ID, "subject", msg.Subject)
		return false
	}

	select {
	case d.jobQueue <- Job{Message: msg}:
		d.logger.Debug("notification queued", "message_id", msg.ID, "queue_length", len(d.jobQueue))
		return true
	default:
		d.logger.Warn("notification queue full, dropping message",
			"message_id", msg.ID,
			"subject", msg.Subject,
			"queue_capacity", cap(d.jobQueue))
		return false
	}
}

func (d *Dispatcher) dispatch() {
	defer close(d.dispatchDone)

	for {
		select {
		case job := <-d.jobQueue:
			if !d.handOff(job) {
				return
			}
		case <-d.draining:
			for {
				select {
				case job := <-d.jobQueue:
					if !d.handOff(job) {
						return
					}
				default:
					return
				}
			}
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) handOff(job Job) bool {
	select {
	case jobChannel := <-d.workerPool:
		select {
		case jobChannel <- job:
			return true
		case <-d.ctx.Done():
			return false
		}
	case <-d.ctx.Done():
		d.logger.Warn("notification abandoned at shutdown", "message_id", job.Message.ID)
		return false
	}
}

func (d *Dispatcher) process(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, job.Message); err != nil {
		d.logger.Error("notification delivery failed",
			"message_id", job.Message.ID,
			"subject", job.Message.Subject,
			"error", err)
	}
}

// Shutdown stops accepting messages, delivers what is already queued and waits
// for the workers. Queued messages are abandoned once ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.shutdownOnce.Do(func() {
		d.logger.Info("shutting down notification dispatcher", "queued", len(d.jobQueue))
		d.closed.Store(true)
		close(d.draining)

		select {
		case <-d.dispatchDone:
		case <-ctx.Done():
			d.logger.Warn("notification drain interrupted", "remaining", len(d.jobQueue))
		}

		d.cancel()
		d.wg.Wait()
		d.logger.Info("notification dispatcher shutdown complete")
	})
}
