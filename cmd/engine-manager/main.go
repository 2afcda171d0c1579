// cmd/engine-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"compliance-copilot/internal/capability/embedding"
	"compliance-copilot/internal/capability/reasoning"
	"compliance-copilot/internal/common/camunda"
	"compliance-copilot/internal/common/config"
	"compliance-copilot/internal/common/database"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/common/observability"
	"compliance-copilot/internal/common/weather"
	"compliance-copilot/internal/engine/fieldmap"
	"compliance-copilot/internal/engine/intent"
	"compliance-copilot/internal/engine/recipes"
	"compliance-copilot/internal/engine/regulatory"
	"compliance-copilot/internal/engine/submission"
	"compliance-copilot/internal/profile"
	"compliance-copilot/pkg/registry"

	// Conversation workers
	ci "compliance-copilot/internal/workers/conversation/classify-intent"
	it "compliance-copilot/internal/workers/conversation/ingest-turn"

	// Form workers
	mf "compliance-copilot/internal/workers/forms/map-fields"
	st "compliance-copilot/internal/workers/forms/select-template"

	// Regulatory workers
	ir "compliance-copilot/internal/workers/regulatory/infer-requirements"

	// ESG workers
	ee "compliance-copilot/internal/workers/esg/estimate-emissions"
	ls "compliance-copilot/internal/workers/esg/suggest-load-shift"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting engine manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("engine-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Recipe catalog ---
	catalog, err := recipes.Load(cfg.Engine.RecipesPath)
	if err != nil {
		zapLog.Fatal("recipe catalog load failed", zap.Error(err))
	}
	zapLog.Info("Recipe catalog loaded",
		zap.String("path", cfg.Engine.RecipesPath),
		zap.Int("recipes", len(catalog.All())),
	)

	// --- Form template registry ---
	templates, err := registry.LoadRegistry(cfg.Engine.TemplatesPath)
	if err != nil {
		zapLog.Fatal("template registry load failed", zap.Error(err))
	}
	zapLog.Info("Form template registry loaded",
		zap.String("path", cfg.Engine.TemplatesPath),
		zap.Int("templates", len(templates.Templates)),
	)

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional) with retry ---
	var citationSearcher regulatory.Searcher
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		citationSearcher = regulatory.NewESSearcher(esClient, cfg.Database.Elasticsearch.Index)
		zapLog.Info("Elasticsearch connected successfully")
	} else {
		zapLog.Info("Elasticsearch disabled, citations resolve from the static table")
	}

	// --- Optional model-backed capabilities ---
	reasoner := reasoning.NewDisabledReasoner()
	suggester := reasoning.NewDisabledCitationSuggester()
	if cfg.APIs.Reasoning.Enabled {
		reasoner, err = reasoning.NewLLMReasoner(
			cfg.APIs.Reasoning.BaseURL,
			cfg.APIs.Reasoning.APIKey,
			cfg.APIs.Reasoning.Model,
			log,
		)
		if err != nil {
			zapLog.Fatal("reasoner init failed", zap.Error(err))
		}
		suggester, err = reasoning.NewLLMCitationSuggester(
			cfg.APIs.Reasoning.BaseURL,
			cfg.APIs.Reasoning.APIKey,
			cfg.APIs.Reasoning.Model,
			log,
		)
		if err != nil {
			zapLog.Fatal("citation suggester init failed", zap.Error(err))
		}
		zapLog.Info("Reasoning capability enabled", zap.String("model", cfg.APIs.Reasoning.Model))
	}

	embedder := embedding.NewDisabledEmbedder()
	if cfg.APIs.Embedding.Enabled {
		embedder, err = embedding.NewLLMEmbedder(
			cfg.APIs.Embedding.BaseURL,
			cfg.APIs.Embedding.APIKey,
			cfg.APIs.Embedding.Model,
		)
		if err != nil {
			zapLog.Fatal("embedder init failed", zap.Error(err))
		}
		zapLog.Info("Embedding capability enabled", zap.String("model", cfg.APIs.Embedding.Model))
	}

	weatherClient := weather.NewClient(
		cfg.APIs.Weather.BaseURL,
		cfg.APIs.Weather.APIKey,
		time.Duration(cfg.APIs.Weather.Timeout)*time.Millisecond,
	)

	// --- Engine components ---
	classifier := intent.NewClassifier(reasoner, log)

	submissionStore := submission.NewRedisStore(
		redisClient,
		time.Duration(cfg.Engine.SubmissionTTL)*time.Second,
	)
	manager := submission.NewManager(submissionStore, catalog, classifier, log)

	mapper := fieldmap.NewMapper(embedder, cfg.Engine.FieldMapThreshold, log)

	profileStore := profile.NewStore(pg, redisClient, 10*time.Minute, log)

	inferrer := regulatory.NewInferrer(catalog, citationSearcher, suggester, log)

	// --- Register workers ---
	var workers []*camunda.CamundaWorker
	startWorker := func(taskType string, handler camunda.JobHandler) {
		wcfg := cfg.Workers[taskType]
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		w := camunda.NewWorker(
			camundaClient.GetClient(),
			taskType,
			wcfg.MaxJobsActive,
			time.Duration(wcfg.Timeout)*time.Millisecond,
			handler,
			obs,
			zapLog,
		)
		workers = append(workers, w)
	}
	workerTimeout := func(taskType string) time.Duration {
		return time.Duration(cfg.Workers[taskType].Timeout) * time.Millisecond
	}

	// Conversation workers (2)
	startWorker(ci.TaskType, ci.NewHandler(
		&ci.Config{Timeout: workerTimeout(ci.TaskType)},
		classifier, log,
	))
	startWorker(it.TaskType, it.NewHandler(
		&it.Config{Timeout: workerTimeout(it.TaskType)},
		manager, log,
	))

	// Form workers (2)
	startWorker(mf.TaskType, mf.NewHandler(
		&mf.Config{Timeout: workerTimeout(mf.TaskType)},
		mapper, submissionStore, profileStore, templates, log,
	))
	startWorker(st.TaskType, st.NewHandler(
		&st.Config{Timeout: workerTimeout(st.TaskType)},
		templates, catalog, log,
	))

	// Regulatory workers (1)
	startWorker(ir.TaskType, ir.NewHandler(
		&ir.Config{Timeout: workerTimeout(ir.TaskType)},
		inferrer, submissionStore, log,
	))

	// ESG workers (2)
	startWorker(ee.TaskType, ee.NewHandler(
		&ee.Config{
			Timeout:    workerTimeout(ee.TaskType),
			GridFactor: cfg.Engine.GridEmissionFactor,
		},
		log,
	))
	startWorker(ls.TaskType, ls.NewHandler(
		&ls.Config{Timeout: workerTimeout(ls.TaskType)},
		weatherClient, log,
	))

	zapLog.Info("All workers registered successfully", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Engine manager stopped gracefully")
}
