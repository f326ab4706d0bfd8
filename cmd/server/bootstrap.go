package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"aliados/internal/auth"
	"aliados/internal/config"
	"aliados/internal/dataset"
	"aliados/internal/db"
	"aliados/internal/engine"
	"aliados/internal/intent"
	"aliados/internal/jobs"
	"aliados/internal/logger"
	"aliados/internal/metrics"
	"aliados/internal/period"
	"aliados/internal/report"
)

// runtime is everything the commands share once configuration is loaded.
type runtime struct {
	cfg      *config.Config
	file     *config.YAMLConfig
	log      logger.Logger
	database *db.DB // nil without DATABASE_URL
	engine   *engine.Engine
	authn    *auth.Authenticator
	recorder *metrics.Recorder
	registry *prometheus.Registry
	flusher  *jobs.StatsFlusher // nil without DATABASE_URL
}

func (r *runtime) Close() {
	if r.database != nil {
		r.database.Close()
	}
	r.log.Sync()
}

// loadConfig reads env configuration, the directory file and builds the logger.
func loadConfig() (*config.Config, *config.YAMLConfig, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logger.NewStructured(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	file, err := config.LoadYAMLConfig(cfg.ConfigFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading %s: %w", cfg.ConfigFile, err)
	}
	if file == nil {
		log.Info("no directory file, using built-in partners", map[string]interface{}{"path": cfg.ConfigFile})
	}
	return cfg, file, log, nil
}

// bootstrap wires the assistant: datasets, classifier, credential stores,
// metrics and, when configured, the database.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, file, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, file: file, log: log, registry: prometheus.NewRegistry()}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		rt.database = database
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations completed", nil)
	}

	activity, goals, err := loadDatasets(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	resolver, err := period.NewResolver(cfg.SupportedYears)
	if err != nil {
		return nil, err
	}
	table, err := file.IntentTable()
	if err != nil {
		return nil, err
	}
	classifier, err := newClassifier(ctx, cfg, table, log)
	if err != nil {
		return nil, err
	}

	// Answer counters go to Postgres in batches, or stay in memory.
	var source metrics.StatsSource
	var sink metrics.AnswerSink
	if rt.database != nil {
		rt.flusher = jobs.NewStatsFlusher(rt.database, cfg.StatsFlushInterval, log)
		source, sink = rt.database, rt.flusher
	} else {
		mem := metrics.NewMemoryStats()
		source, sink = mem, mem
	}
	rt.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rt.recorder = metrics.NewRecorder(rt.registry, source, sink, log)

	dir := file.Directory()
	rt.engine, err = engine.New(engine.Options{
		Classifier: classifier,
		Directory:  dir,
		Reports: report.NewGenerator(report.Config{
			Directory:        dir,
			Resolver:         resolver,
			Activity:         activity,
			Goals:            goals,
			ComparisonMonths: cfg.ComparisonMonths,
		}),
		Formatter: report.NewFormatter(cfg.CurrencySymbol),
		Logger:    log,
		Observer:  rt.recorder,
	})
	if err != nil {
		return nil, err
	}

	store, err := credentialStore(file, rt.database)
	if err != nil {
		return nil, err
	}
	rt.authn = auth.NewAuthenticator(store, log)

	ok = true
	return rt, nil
}

func loadDatasets(ctx context.Context, cfg *config.Config, log logger.Logger) (*dataset.Dataset, *dataset.Dataset, error) {
	activity, goals, err := dataset.NewLoader(log).LoadAll(ctx, sources(cfg.ActivityFiles), sources(cfg.GoalFiles))
	if err == nil {
		return activity, goals, nil
	}
	if !errors.Is(err, dataset.ErrNoData) || !cfg.IsDev() {
		return nil, nil, err
	}
	log.Warn("no activity rows loaded, serving the sample dataset", map[string]interface{}{"error": err.Error()})
	activity, goals = sampleDatasets()
	return activity, goals, nil
}

// sampleDatasets is the one row demo data used in development when no
// source file could be read.
func sampleDatasets() (*dataset.Dataset, *dataset.Dataset) {
	activity := dataset.New(dataset.Activity, []dataset.Record{
		{CampaignLabel: "ATENTO SWAT BOGOTÁ", Period: "2025-01", Units: 100, Revenue: 5000},
	})
	goals := dataset.New(dataset.Goal, []dataset.Record{
		{CampaignLabel: "ATENTO SWAT BOGOTÁ", Period: "2025-01", Units: 150, Revenue: 6000},
	})
	return activity, goals
}

func sources(list []string) []dataset.Source {
	out := make([]dataset.Source, 0, len(list))
	for _, s := range list {
		out = append(out, dataset.ParseSource(s))
	}
	return out
}

func newClassifier(ctx context.Context, cfg *config.Config, table intent.Table, log logger.Logger) (intent.Classifier, error) {
	if cfg.Classifier != "embedding" {
		return intent.NewKeywordClassifier(table), nil
	}
	var embedder intent.Embedder
	switch cfg.Embedder {
	case "ollama":
		embedder = intent.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.OllamaURL)
	default:
		embedder = intent.NewHashingEmbedder(256)
	}
	c, err := intent.NewEmbeddingClassifier(ctx, embedder, table, cfg.SimilarityThreshold, log)
	if err != nil {
		return nil, fmt.Errorf("preparing embedding classifier: %w", err)
	}
	return c, nil
}

// credentialStore checks the directory file users first, then Postgres.
func credentialStore(file *config.YAMLConfig, database *db.DB) (auth.Store, error) {
	var users []config.UserConfig
	if file != nil {
		users = file.Users
	}
	files, err := auth.NewFileStore(users)
	if err != nil {
		return nil, err
	}
	if database == nil {
		return files, nil
	}
	return auth.ChainStore{files, auth.NewPostgresStore(database)}, nil
}
