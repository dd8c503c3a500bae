package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/nexus-hr/interview-coordinator/internal/cache"
	"github.com/nexus-hr/interview-coordinator/internal/config"
	"github.com/nexus-hr/interview-coordinator/internal/database"
	"github.com/nexus-hr/interview-coordinator/internal/graph"
	"github.com/nexus-hr/interview-coordinator/internal/handler"
	"github.com/nexus-hr/interview-coordinator/internal/logger"
	"github.com/nexus-hr/interview-coordinator/internal/notify"
	"github.com/nexus-hr/interview-coordinator/internal/repository"
	"github.com/nexus-hr/interview-coordinator/internal/scheduling"
	"github.com/nexus-hr/interview-coordinator/internal/workflow"
	"github.com/nexus-hr/interview-coordinator/pkg"
	"go.uber.org/zap"
)

type application struct {
	DB         *pgxpool.Pool
	Logger     *zap.Logger
	Config     *config.Config
	Repository *repository.Repository
	Handler    *handler.Handler
}

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, _ := logger.NewLogger(cfg.Env)
	defer log.Sync()
	sugar := log.Sugar()
	sugar.Infof("config loaded, env=%s", cfg.Env)

	pool, err := database.Connect(ctx, cfg.DB.DSN, cfg.DB.MaxOpenConns)
	if err != nil {
		sugar.Fatal(err)
	}
	defer pool.Close()

	repo := repository.NewRepository(pool)

	var idem cache.IdempotencyStore
	if cfg.Redis.Addr != "" {
		store := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := store.Ping(ctx); err != nil {
			sugar.Fatalf("redis ping failed: %v", err)
		}
		idem = store
	} else {
		sugar.Warn("REDIS_ADDR not set, idempotency keys are in-process only")
		idem = cache.NewMemoryStore()
	}

	crypto, err := pkg.NewCrypto(cfg.Crypto.Secret)
	if err != nil {
		sugar.Fatal(err)
	}

	tokens := &graph.RefreshingTokenSource{
		Store:        repo,
		Crypto:       crypto,
		TokenURL:     cfg.Graph.TokenURL,
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
	}
	graphClient := graph.NewClient(cfg.Graph.BaseURL, tokens, cfg.Graph.Timeout)

	coordinator := &scheduling.Coordinator{
		Provisioner:    graphClient,
		Cache:          idem,
		Logger:         log,
		RejectPast:     cfg.Workflow.RejectPastSchedules,
		IdempotencyTTL: cfg.Workflow.IdempotencyTTL,
		OrganizerName:  cfg.Workflow.OrganizerName,
		OrganizerEmail: cfg.Workflow.OrganizerEmail,
	}

	dispatcher := &notify.Dispatcher{
		Mailbox:         graphClient,
		Logger:          log,
		DedupRecipients: cfg.Workflow.DedupRecipients,
	}

	engine := &workflow.Engine{
		Store:     repo,
		Scheduler: coordinator,
		Notifier:  dispatcher,
		Logger:    log,
	}

	handlerApp := &handler.Handler{
		Logger:  log,
		Engine:  engine,
		Mailbox: graphClient,
		JwtKey:  cfg.JWT.Secret,
	}

	app := &application{
		DB:         pool,
		Logger:     log,
		Config:     cfg,
		Repository: repo,
		Handler:    handlerApp,
	}

	if err := app.serve(); err != nil {
		sugar.Fatal(err)
	}
}
