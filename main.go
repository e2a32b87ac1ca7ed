package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/quota"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

const serviceName = "messaging-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	configureLogging(cfg.Log)

	database, err := db.Connect(cfg.Database.DSN, cfg.Database.MaxConnections, cfg.Database.ConnMaxLifetime)
	if err != nil {
		logrus.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.Tracing.OTLPEndpoint)
	if err != nil {
		logrus.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	if cfg.AMQP.URL != "" {
		eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logrus.Warnf("event publisher disabled: %v", err)
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer auditPublisher.Close()
	logrus.Infof("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	emitter := telemetry.NewAuditEmitter(auditPublisher, cfg.AMQP.AuditRoutingKey, serviceName, cfg.Environment)

	actorRepo := repositories.NewActorRepo(database)
	convRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	gate := quota.NewGate(actorRepo, messageRepo)
	hub := ws.NewHub()

	var limiter middleware.SendLimiter
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		limiter = middleware.NewRedisSendLimiter(client, cfg.RateLimit.MessagesPerMinute, time.Minute)
		logrus.Infof("send rate limiter enabled limit=%d/min", cfg.RateLimit.MessagesPerMinute)
	}

	conversationHandler := handlers.NewConversationHandler(convRepo, actorRepo)
	messageHandler := handlers.NewMessageHandler(convRepo, messageRepo, gate, hub, emitter)
	quotaHandler := handlers.NewQuotaHandler(gate)
	conversationWS := ws.NewConversationWebSocketHandler(hub, convRepo, actorRepo, cfg.JWT.Secret)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterHealthRoutes(router, database)
	handlers.RegisterDebugRoutes(router, emitter, cfg.Debug)

	authMiddleware := middleware.AuthMiddleware(cfg.JWT.Secret, actorRepo)
	sendLimit := middleware.RateLimitMiddleware(limiter)

	router.GET("/conversations", authMiddleware, conversationHandler.ListConversations)
	router.POST("/conversations/start", authMiddleware, conversationHandler.StartConversation)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, messageHandler.GetMessages)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, sendLimit, messageHandler.PostMessage)
	router.DELETE("/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)
	router.GET("/quota", authMiddleware, quotaHandler.GetQuota)

	router.GET("/ws/conversations/:conversation_id", conversationWS.Handle)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logrus.Infof("listening on %s", addr)
	if err := router.Run(addr); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}

func configureLogging(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
