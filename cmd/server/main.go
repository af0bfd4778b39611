package main

import (
	"log"
	"math/rand"
	"time"

	config "smartstore-ai-api/configs"
	"smartstore-ai-api/pkg/handlers"
	"smartstore-ai-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Ginルーターの初期化
	r := gin.Default()

	// サービスの初期化
	monitoringService := services.NewMonitoringService()
	forecastService := services.NewForecastService(
		cfg.ForecastHorizon,
		cfg.SyntheticFallback,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
	intentService := services.NewIntentService(services.DefaultIntentCatalog())
	assistantService := services.NewAssistantService(intentService)

	// ハンドラーの初期化
	forecastHandler := handlers.NewForecastHandler(forecastService)
	salesImportHandler := handlers.NewSalesImportHandler(forecastService)
	chatbotHandler := handlers.NewChatbotHandler(intentService, assistantService)
	adminHandler := handlers.NewAdminHandler(cfg)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// ミドルウェアの登録
	r.Use(monitoringService.LoggingMiddleware()) // ロギングミドルウェアをグローバルに適用
	r.Use(cors.Default())

	// ヘルスチェックエンドポイント
	r.GET("/health", handlers.HealthCheck)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	{
		// 売上予測API（メンテナンス中は503）
		forecast := v1.Group("/forecast")
		forecast.Use(handlers.MaintenanceMiddleware())
		{
			forecast.POST("/sales", forecastHandler.ForecastSales)
			forecast.GET("/settings", forecastHandler.GetForecastSettings)
			forecast.POST("/import", salesImportHandler.ImportAndForecast)
		}

		// チャットボットAPI（メンテナンス中は503）
		chat := v1.Group("/chat")
		chat.Use(handlers.MaintenanceMiddleware())
		{
			chat.POST("", chatbotHandler.Chat)
			chat.POST("/classify", chatbotHandler.Classify)
		}

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}

	log.Println("Starting SmartStore AI API server on :" + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
