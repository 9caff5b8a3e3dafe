package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moyoez/calibre-panel/api"
	"github.com/moyoez/calibre-panel/api/notifyhub"
	"github.com/moyoez/calibre-panel/execute"
	"github.com/moyoez/calibre-panel/rpc"
	"github.com/moyoez/calibre-panel/tool"
)

func main() {
	cfg := tool.SetFlags()

	// initialize logger
	tool.InitLogger()
	tool.SetLogMode(cfg.Log)

	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	tool.ApplyFlags(&appCfg, cfg)
	tool.SetCurrentConfig(appCfg)

	tool.DefaultLogger.Infof("Settings file: %s, %d shared folder(s)", appCfg.SettingsPath, len(appCfg.SharedFolders))

	store := rpc.NewStore(appCfg.SettingsPath)
	folders := rpc.NewFolders(appCfg.SharedFolders)
	service := rpc.NewService(store, folders, appCfg)

	hub := notifyhub.New()
	manager := execute.NewManager(time.Duration(appCfg.JobTTLSeconds) * time.Second)
	manager.SetSink(hub)
	service.Register(manager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiServer := api.NewServer(appCfg, service, manager, hub)
	if err := apiServer.Start(ctx); err != nil {
		tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
	}
}
