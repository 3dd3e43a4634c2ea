// Package worker runs the asynq server that consumes analysis tasks
// from redis and executes them against a configured pipeline.
package worker

import (
	"github.com/doclens/doclens/internal/pipeline"
	"github.com/doclens/doclens/internal/tasks"
	"github.com/doclens/doclens/internal/transport"
	"github.com/hibiken/asynq"

	"github.com/redis/go-redis/v9"
)

const defaultConcurrency = 10

type Worker struct {
	rdb         *redis.Client
	asynqServer *asynq.Server

	transport transport.Transport
	pipeline  *pipeline.Pipeline

	redisAddr     string
	redisUsername string
	redisPassword string
	redisDB       int
	concurrency   int
}

type WorkerOption func(*Worker)

func WithRedisAddr(addr string) WorkerOption {
	return func(w *Worker) {
		w.redisAddr = addr
	}
}

func WithRedisUsername(username string) WorkerOption {
	return func(w *Worker) {
		w.redisUsername = username
	}
}

func WithRedisPassword(password string) WorkerOption {
	return func(w *Worker) {
		w.redisPassword = password
	}
}

func WithRedisDB(db int) WorkerOption {
	return func(w *Worker) {
		w.redisDB = db
	}
}

func WithConcurrency(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

func New(pipeline *pipeline.Pipeline, options ...WorkerOption) *Worker {
	w := &Worker{
		pipeline:    pipeline,
		redisAddr:   "localhost:6379",
		concurrency: defaultConcurrency,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *Worker) Start() error {
	w.rdb = redis.NewClient(&redis.Options{
		Addr:     w.redisAddr,
		Username: w.redisUsername,
		Password: w.redisPassword,
		DB:       w.redisDB,
	})
	defer w.rdb.Close()

	w.asynqServer = asynq.NewServerFromRedisClient(
		w.rdb,
		asynq.Config{
			Concurrency: w.concurrency,
		},
	)

	w.transport = transport.NewRedisTransport(w.rdb)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeAnalyze, tasks.NewAnalyzeTaskHandler(w.transport, w.pipeline))

	if err := w.asynqServer.Run(mux); err != nil {
		return err
	}
	return nil
}
