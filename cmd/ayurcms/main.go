package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ayurwell/ayurcms/config"
	"github.com/ayurwell/ayurcms/internal/adminapi"
	"github.com/ayurwell/ayurcms/internal/app"
	"github.com/ayurwell/ayurcms/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables")
	seed     = flag.Bool("seed", false, "insert the sample catalog")
)

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	if *seed {
		if err := application.SeedDb(); err != nil {
			zap.S().Errorf("seed failed: %v", err)
			os.Exit(1)
		}
		return
	}

	webserver.Init(application)
	adminapi.InitRouter()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		zap.S().Infof("received signal %s, shutting down", s)
		if err := webserver.Shutdown(); err != nil {
			zap.S().Error(err)
		}
	}()

	if err := webserver.Listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
