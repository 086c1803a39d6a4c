package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanun0323/logs"

	"marketref/internal/config"
	"marketref/internal/feed"
	"marketref/internal/manager"
	"marketref/internal/store"
	"marketref/pkg/conn"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		logs.Errorf("refdata: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", defaultConfigPath, "config file path")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configFlag)
	if err != nil {
		return err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return err
	}

	st, err := store.Open(conn.Option{Path: cfg.Store.Path}, store.Config{
		Culture:         cfg.Culture,
		CultureFallback: cfg.CultureFallback,
		Providers:       cfg.Providers,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	mgr, err := manager.New(st, mode)
	if err != nil {
		return err
	}
	feeds := feed.NewCache(mgr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logs.Infof("refdata ready: store %s, %d providers, %d open feeds",
		cfg.Store.Path, len(cfg.Providers), feeds.OpenFeedCount())

	<-ctx.Done()
	logs.Info("refdata shutting down")
	return nil
}
