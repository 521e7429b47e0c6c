package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cohera/internal/queue"
	"cohera/internal/util"
	"cohera/pkg/leaselock"
	"cohera/pkg/logger"
	"cohera/pkg/logger/console"
	"cohera/pkg/store"
	pgxstore "cohera/pkg/store/pgx"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Init(console.New(console.Params{
		Debug: util.GetEnvBool("DEBUG", false),
	}))

	poolCfg, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Invalid database URL", "err", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pgConn, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	var cache store.EmbeddingStore
	if util.GetEnvBool("CACHE_EMBEDDINGS", true) {
		cache = pgxstore.New(pgConn)
	}
	pipeline, err := util.NewPipelineFromEnv(cache)
	if err != nil {
		logger.Fatal("Failed to build evaluation pipeline", "err", err)
	}
	locker := leaselock.New(pgConn)

	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.EvaluateQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	// One unacked message at a time: jobs can run for minutes and the lease
	// layer already serializes per job.
	if err := consumerCh.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.EvaluateQueue,
		"evaluate_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.EvaluateQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.EvaluateQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed")
				return
			}

			startTime := time.Now()
			logger.Info("Received message", "queue", queue.EvaluateQueue)

			err := queue.ProcessEvaluateMessage(ctx, pipeline, locker, pgConn, string(msg.Body))
			if err != nil {
				logger.Error("Error processing message", "queue", queue.EvaluateQueue, "err", err)
				handleProcessingError(consumerCh, msg, queue.EvaluateQueue)
			} else {
				if err := msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
				logger.Info("Message processed successfully", "queue", queue.EvaluateQueue)
			}

			metrics := pipeline.Metrics()
			logger.Info(
				"Embedding metrics",
				"input_tokens", metrics.InputTokens,
				"total_tokens", metrics.TotalTokens,
				"duration_ms", metrics.DurationMs,
			)
			pipeline.ResetMetrics()

			logger.Info("Processing time", "duration", time.Since(startTime).Round(time.Millisecond))
			logger.Info("Waiting for next message")
		}
	}
}

// handleProcessingError routes a failed delivery to the retry queue, or to
// the DLQ once the retry budget is spent.
func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = int32(retries + 1)

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
