package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"estudios/internal/audit"
	"estudios/internal/notification"
	"estudios/internal/notification/inbox"
	notifmetrics "estudios/internal/notification/metrics"
	"estudios/internal/notification/sink"
	"estudios/internal/platform/config"
	"estudios/internal/platform/postgres"
	"estudios/internal/platform/redis"
	"estudios/internal/study/service"
	"estudios/internal/study/store"
	"estudios/pkg/platform/circuit"
	"estudios/pkg/platform/httputil"
)

const txTimeout = 5 * time.Second

// backends holds the process-wide adapters chosen from configuration. Every
// external backend is optional and falls back to an in-process one.
type backends struct {
	Stores     service.Stores
	Tx         service.StoreTx
	StoreKind  string
	Inbox      inbox.Store
	Audit      *audit.Publisher
	Dispatcher *notification.Dispatcher

	db      *sql.DB
	redis   *redis.Client
	kafka   *kgo.Client
	closers []func()
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*backends, error) {
	in := &backends{}
	if err := in.buildStores(ctx, cfg, log); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.buildInbox(ctx, cfg, log); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.buildAudit(ctx, cfg, log); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.buildDispatcher(cfg, log); err != nil {
		in.Close()
		return nil, err
	}
	return in, nil
}

func (in *backends) buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	if cfg.DatabaseURL == "" {
		mem := store.NewInMemory()
		in.Stores = mem.Stores()
		in.Tx = service.NewShardedTx(txTimeout)
		in.StoreKind = "memory"
		log.Warn("DATABASE_URL not set, using in-memory stores")
		return nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	in.db = db
	in.closers = append(in.closers, func() { _ = db.Close() })
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	in.Stores = store.NewPostgres(db).Stores()
	in.Tx = postgres.NewTxRunner(db, txTimeout)
	in.StoreKind = "postgres"
	return nil
}

func (in *backends) buildInbox(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if client == nil {
		log.Warn("REDIS_URL not set, notification inbox kept in memory")
		in.Inbox = inbox.NewInMemory()
		return nil
	}
	in.redis = client
	in.closers = append(in.closers, func() { _ = client.Close() })
	in.Inbox = inbox.NewRedis(client.Client)
	return nil
}

func (in *backends) buildAudit(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("KAFKA_BROKERS not set, audit events kept in memory")
		in.Audit = audit.NewPublisher(audit.NewInMemoryStore())
		return nil
	}
	client, err := audit.NewKafkaClient(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		return err
	}
	in.kafka = client
	in.closers = append(in.closers, client.Close)

	topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := audit.EnsureTopic(topicCtx, client, cfg.Kafka.AuditTopic, 3, 1); err != nil {
		return err
	}
	in.Audit = audit.NewPublisher(audit.NewKafkaStore(client, cfg.Kafka.AuditTopic))
	return nil
}

func (in *backends) buildDispatcher(cfg config.Server, log *slog.Logger) error {
	m := notifmetrics.New()
	fallback := sink.NewLog(log)

	var email sink.Sink = fallback
	if cfg.Rabbit.URI != "" {
		rabbit, err := sink.NewRabbit(cfg.Rabbit.URI, cfg.Rabbit.EmailQueue)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		in.closers = append(in.closers, func() { _ = rabbit.Close() })
		email = sink.NewGuarded(rabbit, fallback, circuit.New("email"), log, m)
	} else {
		log.Warn("RABBIT_URI not set, emails are logged only")
	}

	in.Dispatcher = notification.New(email, in.Inbox,
		notification.WithLogger(log),
		notification.WithMetrics(m),
		notification.WithQueueSize(cfg.Notifier.QueueSize),
		notification.WithWorkers(cfg.Notifier.Workers),
	)
	return nil
}

// Health reports 200 when every configured backend answers.
func (in *backends) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK
	if in.db != nil {
		checks["postgres"] = "ok"
		if err := in.db.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if in.redis != nil {
		checks["redis"] = "ok"
		if err := in.redis.Health(ctx); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if in.kafka != nil {
		checks["kafka"] = "ok"
		if err := in.kafka.Ping(ctx); err != nil {
			checks["kafka"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	httputil.WriteJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": checks})
}

// Close drains notifications first, then releases connections in reverse
// order of creation.
func (in *backends) Close() {
	if in.Dispatcher != nil {
		in.Dispatcher.Close()
	}
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
	in.closers = nil
}
