package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/kavyapath/kavyapath-web/internal/cli"
	"github.com/kavyapath/kavyapath-web/internal/config"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

func main() {
	config.LoadDotEnv()
	pkglogger.InitStructured("local")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.RootCmd.ExecuteContext(ctx); err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("kavyactl failed")
		stop()
		os.Exit(1)
	}
}
