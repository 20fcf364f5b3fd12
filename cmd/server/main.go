package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"ranklist/internal/api"
	"ranklist/internal/config"
	"ranklist/internal/leaderboard"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using environment variables only")
		}
	} else {
		log.Println("loaded environment from ../.env")
	}

	log.Println("================================")
	log.Println(" RANKLIST - LEADERBOARD SERVICE")
	log.Println("================================")

	appConfig := config.Load()
	rankCfg := appConfig.Rank
	serverCfg := appConfig.Server
	auditCfg := appConfig.Audit

	port := strconv.Itoa(serverCfg.Port)
	log.Printf("config: fanout=%d, port=%s", rankCfg.Fanout, port)

	lb := leaderboard.New(rankCfg.Fanout)

	var auditLog *leaderboard.AuditLog
	if auditCfg.Enabled {
		auditLog = leaderboard.NewAuditLog()
		if err := auditLog.Start(auditCfg.LogPath); err != nil {
			log.Printf("audit log disabled: %v", err)
			auditLog = nil
		} else {
			log.Printf("audit log: %s", auditCfg.LogPath)
			lb.AttachAuditLog(auditLog)
		}
	}

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	adminKey := os.Getenv("ADMIN_API_KEY")
	if adminKey == "" {
		log.Println("ADMIN_API_KEY not set - /api/clear is unauthenticated")
	}

	api.DefaultRateLimitConfig.RequestsPerSecond = appConfig.RateLimit.RequestsPerSecond
	api.DefaultRateLimitConfig.Burst = appConfig.RateLimit.Burst

	server := api.NewServer(lb, adminKey)

	go func() {
		addr := ":" + port
		log.Printf("API server on http://localhost%s", addr)

		if err := server.Start(addr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("server ready, press Ctrl+C to stop")
	<-quit

	log.Println("shutting down...")
	server.Stop()
	if auditLog != nil {
		auditLog.Stop()
	}
	log.Println("goodbye")
}
