package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/gorilla/mux"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"inboundbot/clients/salesforce"
	slackclient "inboundbot/clients/slack"
	"inboundbot/config"
	"inboundbot/handlers"
	"inboundbot/middleware"
	"inboundbot/services"
	"inboundbot/services/crmsession"
	"inboundbot/services/eventdedup"
	"inboundbot/services/resolver"
	"inboundbot/usecases/inbound"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackConfig.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "inboundbot",
		LogsURL:     cfg.ServerLogsURL,
	})

	salesforceClient := salesforce.NewClient(salesforce.Config{
		LoginURL:     cfg.SalesforceConfig.LoginURL,
		ClientID:     cfg.SalesforceConfig.ClientID,
		ClientSecret: cfg.SalesforceConfig.ClientSecret,
		APIVersion:   cfg.SalesforceConfig.APIVersion,
	})
	crmSession := crmsession.NewManager(salesforceClient, crmsession.Config{
		MaxAge:              cfg.SalesforceConfig.SessionMaxAge,
		ResellerAccountName: cfg.SalesforceConfig.ResellerAccountName,
	})
	if _, err := crmSession.EnsureSession(ctx); err != nil {
		// Not fatal: the first event retries authentication
		log.Printf("⚠️ Initial Salesforce authentication failed: %v", err)
	}
	resolverService := resolver.NewResolverService(crmSession, resolver.Config{
		AccountDomainField: cfg.SalesforceConfig.AccountDomainField,
	})

	slackOptions := []slack.Option{}
	if cfg.SlackConfig.IsSocketMode() {
		slackOptions = append(slackOptions, slack.OptionAppLevelToken(cfg.SlackConfig.AppToken))
	}
	slackClient := slackclient.NewSlackClient(cfg.SlackConfig.BotToken, slackOptions...)

	inboundUseCase := inbound.NewInboundUseCase(slackClient, crmSession, resolverService, inbound.Config{
		ChannelID:          cfg.SlackConfig.ChannelID,
		NotificationMarker: cfg.NotificationMarker,
		ReviewerUserID:     cfg.SlackConfig.ReviewerUserID,
		RecordBaseURL:      cfg.SalesforceConfig.BaseURL,
	})

	var dedup services.EventDeduplicator = eventdedup.NewMemoryDeduplicator(eventdedup.DefaultTTL)
	if cfg.RedisURL != "" {
		redisClient, err := eventdedup.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		dedup = eventdedup.NewRedisDeduplicator(redisClient, eventdedup.DefaultTTL)
		log.Printf("✅ Event dedupe backed by Redis")
	}

	// A single worker keeps notifications strictly sequential
	pool := workerpool.New(1)
	dispatcher := handlers.NewEventDispatcher(inboundUseCase, dedup, pool, alertMiddleware)

	router := mux.NewRouter()
	if cfg.SlackConfig.IsHTTPConfigured() {
		handlers.NewSlackEventsHandler(cfg.SlackConfig.SigningSecret, dispatcher).SetupEndpoints(router)
	}
	handlers.SetupHealthEndpoint(router)

	socketDone := make(chan struct{})
	if cfg.SlackConfig.IsSocketMode() {
		socketClient := socketmode.New(slackClient.Client)
		socketHandler := handlers.NewSocketModeHandler(socketClient, dispatcher)
		go func() {
			defer close(socketDone)
			if err := socketHandler.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("❌ Socket Mode stopped: %v", err)
			}
		}()
	} else {
		close(socketDone)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(router),
		ReadHeaderTimeout: 30 * time.Second,
	}

	err = handleGracefulShutdown(server, cancel)
	// Submit panics on a stopped pool, so every listener must exit before StopWait
	<-socketDone

	log.Printf("📋 Waiting for queued events to finish")
	pool.StopWait()
	alertMiddleware.Wait()
	return err
}

func handleGracefulShutdown(server *http.Server, stopListeners context.CancelFunc) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")
	stopListeners()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
