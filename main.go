package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/drillbot/internal/bot"
	"github.com/example/drillbot/internal/config"
	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/internal/exam"
	"github.com/example/drillbot/internal/excel"
	"github.com/example/drillbot/internal/practice"
	"github.com/example/drillbot/internal/scheduler"
	"github.com/example/drillbot/internal/session"
	"github.com/example/drillbot/pkg/logger"
	"github.com/example/drillbot/pkg/models"
	"github.com/example/drillbot/pkg/monitoring"
	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.InitLogger(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Log.Sync()

	monitoring.Init()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	questions := database.NewQuestionRepository(db)
	answers := database.NewAnswerLogRepository(db)
	wrong := database.NewWrongLogRepository(db)
	stats := database.NewStatisticsRepository(db)

	// the bank must exist before the first session starts
	imported, err := excel.ImportIfEmpty(ctx, questions, excel.ImportConfig{
		FilePath:  cfg.Import.Path,
		SheetName: cfg.Import.Sheet,
	})
	if errors.Is(err, excel.ErrSourceMissing) {
		logger.Log.Fatal("question bank is empty and there is no file to import; upload it first",
			zap.String("path", cfg.Import.Path))
	}
	if err != nil {
		logger.Log.Fatal("failed to import question bank", zap.Error(err))
	}
	if imported.Existing > 0 {
		logger.Log.Info("question bank ready", zap.Int("questions", imported.Existing))
	}

	if cfg.Bot.Token == "" {
		logger.Log.Fatal("bot token is not set (QUIZ_BOT_TOKEN or TELEGRAM_BOT_TOKEN)")
	}

	examCfg := examConfig(cfg.Exam)
	sessions := session.NewStore(cfg.Practice.DefaultUser)

	sched := scheduler.New(sessions, cfg.Session.IdleTTL, cfg.Session.SweepInterval)
	if err := sched.Start(); err != nil {
		logger.Log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", monitoring.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		logger.Log.Info("metrics listening", zap.String("addr", cfg.Metrics.Addr))
	}

	botCfg := bot.DefaultConfig()
	botCfg.Token = cfg.Bot.Token
	botCfg.Debug = cfg.Bot.Debug
	b := bot.New(botCfg, bot.Deps{
		Sessions:   sessions,
		Practice:   practice.NewService(questions, answers, wrong, stats, practice.Options{AllowRepeats: cfg.Practice.AllowRepeats}),
		Builder:    exam.NewBuilder(questions, examCfg),
		Grader:     exam.NewGrader(examCfg, answers),
		ExamConfig: examCfg,
		Questions:  questions,
		Wrong:      wrong,
		Stats:      stats,
	})

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			logger.Log.Info("received signal", zap.String("signal", sig.String()))
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := b.Stop(shutdownCtx); err != nil {
			logger.Log.Warn("error during shutdown", zap.Error(err))
		}
		if metricsServer != nil {
			metricsServer.Shutdown(shutdownCtx)
		}
		close(done)
	}()

	logger.Log.Info("bot starting, press Ctrl+C to stop")
	go func() {
		if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Error("bot error", zap.Error(err))
		}
		cancel()
	}()

	<-done
	logger.Log.Info("bot stopped successfully")
}

func examConfig(c config.ExamConfig) exam.Config {
	return exam.Config{
		Rules: map[models.QuestionType]exam.Rule{
			models.SingleChoice: {Count: c.SingleChoice.Count, Points: c.SingleChoice.Points},
			models.MultiChoice:  {Count: c.MultiChoice.Count, Points: c.MultiChoice.Points},
			models.TrueFalse:    {Count: c.TrueFalse.Count, Points: c.TrueFalse.Points},
			models.FillBlank:    {Count: c.FillBlank.Count, Points: c.FillBlank.Points},
		},
		Duration: c.Duration,
	}
}
