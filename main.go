package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/phonemart/phonemart/config"
	"github.com/phonemart/phonemart/internal/adminapi"
	"github.com/phonemart/phonemart/internal/app"
	"github.com/phonemart/phonemart/internal/storeapi"
	"github.com/phonemart/phonemart/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

var (
	BuildVersion = "dev"
)

func printHelp() {
	if *h {
		ustr := fmt.Sprintf("phonemart version: %s, usage: phonemart -h\nOptions:", BuildVersion)
		fmt.Fprintf(os.Stderr, "%s\n", ustr)
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	printHelp()

	if *showVer {
		fmt.Println(BuildVersion)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	web := webserver.Init(application)
	adminapi.InitRouter()
	storeapi.InitRouter()

	go func() {
		if err := web.Listen(); err != nil {
			zap.L().Fatal("web server stopped", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	zap.L().Info("shutting down", zap.String("signal", sig.String()))
	_ = web.Close()
}
