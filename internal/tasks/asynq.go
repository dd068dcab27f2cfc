package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// AsynqScheduler keeps deferred tasks in Redis so they survive restarts.
type AsynqScheduler struct {
	client  *asynq.Client
	server  *asynq.Server
	mux     *asynq.ServeMux
	timeout time.Duration
}

// NewAsynqScheduler connects to Redis at redisAddr.
func NewAsynqScheduler(redisAddr string, timeout time.Duration) *AsynqScheduler {
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}

	opts := asynq.RedisClientOpt{Addr: redisAddr}

	return &AsynqScheduler{
		client: asynq.NewClient(opts),
		server: asynq.NewServer(opts, asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"payments":      10,
				"notifications": 5,
			},
		}),
		mux:     asynq.NewServeMux(),
		timeout: timeout,
	}
}

func (s *AsynqScheduler) Handle(taskType string, h HandlerFunc) {
	s.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		return h(ctx, t.Payload())
	})
}

func (s *AsynqScheduler) Schedule(ctx context.Context, taskType string, payload []byte, delay time.Duration) error {
	task := asynq.NewTask(taskType, payload)

	_, err := s.client.EnqueueContext(ctx, task,
		asynq.Queue(queueFor(taskType)),
		asynq.ProcessIn(delay),
		asynq.Timeout(s.timeout),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s failed: %w", taskType, err)
	}
	return nil
}

func (s *AsynqScheduler) Start() error {
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start asynq server failed: %w", err)
	}
	log.Printf("asynq scheduler started")
	return nil
}

func (s *AsynqScheduler) Shutdown(_ context.Context) error {
	s.server.Shutdown()
	return s.client.Close()
}

func queueFor(taskType string) string {
	if taskType == TypePaymentSettle {
		return "payments"
	}
	return "notifications"
}
