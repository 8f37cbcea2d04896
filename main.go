package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"prepconnect/internal/config"
	"prepconnect/internal/http/http_server"
	"prepconnect/internal/http/statushandler"
	"prepconnect/internal/services/call"
	"prepconnect/internal/services/presence"
	"prepconnect/internal/services/rooms"
	"prepconnect/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Live-connection hub; every relay resolves through it.
	hub := ws.NewHub()

	// 4. Coordination services: presence, rooms, call handshakes. All state
	// is in-process and dies with the process.
	presenceSvc := presence.NewPresenceService(hub)
	roomSvc := rooms.NewRoomService(hub)
	callSvc := call.NewCallService(hub, presenceSvc)

	// 5. WS server wiring the event router to the services
	wsSrv := ws.NewWsServer(hub, cfg.WsReadLimitBytes, presenceSvc, roomSvc, callSvc)

	// 6. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv,
		statushandler.New(hub, presenceSvc, roomSvc))
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
