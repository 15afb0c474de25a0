package cron

import (
	"context"
	"time"

	"quickbook/config"
	"quickbook/services/notification"
	"quickbook/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection shared by the dispatcher and worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitNotificationWorker runs the staff notification worker in the
// background and returns the server so main can shut it down.
func InitNotificationWorker(notifSvc notification.NotificationService, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"notifications": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeIntentNotify, handleIntentNotifyTask(notifSvc, logger))

	go monitorRedisConnection(logger)

	go func() {
		logger.Info("[NotificationWorker] starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("[NotificationWorker] failed to start worker",
					zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Error("[NotificationWorker] max start attempts reached, queued alerts will wait for the next deploy")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}

func handleIntentNotifyTask(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseIntentNotifyTask(task)
		if err != nil {
			logger.Error("[NotificationHandler] invalid payload", zap.Error(err))
			return err
		}

		reports := notifSvc.NotifyIntent(ctx, p)
		delivered := 0
		for _, r := range reports {
			if r.Result.Success {
				delivered++
			}
		}
		logger.Info("[NotificationHandler] staff notification processed",
			zap.String("intentId", p.IntentID),
			zap.String("event", string(p.Event)),
			zap.Int("channels", len(reports)),
			zap.Int("delivered", delivered))
		// Per-channel retries already ran; re-running the task would resend
		// to channels that succeeded.
		return nil
	}
}

// monitorRedisConnection pings the queue Redis periodically to surface outages.
func monitorRedisConnection(logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("[NotificationWorker] Redis connection lost", zap.Error(err))
		}
	}
}
