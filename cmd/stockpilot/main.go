package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amflabs/stockpilot/config"
	"github.com/amflabs/stockpilot/internal/adminapi"
	"github.com/amflabs/stockpilot/internal/app"
	"github.com/amflabs/stockpilot/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "reset collections to factory seed data and exit")
)

func printHelp() {
	if *h {
		ustr := fmt.Sprintf("stockpilot version: %s, Usage: stockpilot -h\nOptions:", app.Version)
		fmt.Fprintf(os.Stderr, "%s\n", ustr)
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	printHelp()

	if *showVer {
		fmt.Println(app.Version)
		os.Exit(0)
	}

	appConfig := config.LoadConfig(*conffile)
	application := app.NewApplication(appConfig)
	if err := application.Init(appConfig); err != nil {
		fmt.Fprintf(os.Stderr, "init: %s\n", err)
		os.Exit(1)
	}
	defer application.Release()

	if *initdb {
		if err := application.InitDb(); err != nil {
			zap.S().Errorf("initdb: %s", err)
			os.Exit(1)
		}
		zap.L().Info("collections reset to seed data")
		return
	}

	webserver.Init(application)
	adminapi.InitRouter()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webserver.Listen()
	})
	g.Go(func() error {
		<-ctx.Done()
		zap.L().Info("shutting down")
		return webserver.Shutdown()
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server stopped: %s", err)
	}
}
