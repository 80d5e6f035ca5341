package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"weekly-digest-bot/config"
	"weekly-digest-bot/internal/ai"
	"weekly-digest-bot/internal/classify"
	"weekly-digest-bot/internal/database"
	"weekly-digest-bot/internal/digest"
	"weekly-digest-bot/internal/metrics"
	"weekly-digest-bot/internal/scheduler"
	"weekly-digest-bot/internal/telegram"
	"weekly-digest-bot/lib/translation"

	"github.com/leonelquinteros/gotext"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	gotext.Configure("locales", strings.ToLower(config.GetString("lang")), "default")
	log.Debugf("language: %s", translation.GetLanguage())

	err := database.InitDB(config.GetString("db_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	metrics.Default.LoadFromDB()

	aiClient, err := ai.NewClient(ai.ClientConfig{
		APIKey:  config.GetString("openrouter_api_key"),
		BaseURL: config.GetString("openrouter_base_url"),
	})
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          config.GetString("telegram_bot_token"),
		MainChatID:     config.GetInt64("main_chat_id"),
		AdminChatID:    config.GetInt64("admin_chat_id"),
		RetentionDays:  config.GetInt("retention_days"),
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	posting := digest.NewService(bot.Bot, aiClient, digest.Config{
		MainChatID:    config.GetInt64("main_chat_id"),
		AdminChatID:   config.GetInt64("admin_chat_id"),
		RetentionDays: config.GetInt("retention_days"),
	})
	classifier := classify.NewService(aiClient)

	bot.Setup(aiClient, posting, classifier)

	cr, err := scheduler.Start(scheduler.Jobs{
		Classify: func() {
			classifier.ProcessUnprocessed(context.Background())
		},
		MondayPost: func() {
			if err := posting.CreateMondayPost(context.Background()); err != nil {
				log.Errorf("Monday post failed: %v", err)
			}
		},
		FridayDigest: func() {
			if err := posting.CreateFridayDigest(context.Background()); err != nil {
				log.Errorf("Friday digest failed: %v", err)
			}
		},
		Cleanup: func() {
			removed, err := database.CleanupOldMessages(config.GetInt("retention_days"))
			if err != nil {
				log.Errorf("Message cleanup failed: %v", err)
				return
			}
			log.Infof("Message cleanup removed %d rows", removed)
		},
	})
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer cr.Stop()

	go bot.Start()

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			metrics.Default.SaveToDB()
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		bot.Stop()
		metrics.Default.SaveToDB()
		log.Println("Metrics saved, shutting down...")
		os.Exit(0)
	}()

	if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
		log.Fatalf("Failed to start metrics and health server: %v", err)
	}
}

func setupLogging() {
	log.SetLevel(log.InfoLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting telegram bot...")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}
