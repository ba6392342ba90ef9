package main

import (
	"flag"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/pressly/lg"
	"github.com/zenazn/goji/graceful"

	snapframe "github.com/hasimpk/snap-to-frame"
	"github.com/hasimpk/snap-to-frame/server"
)

var (
	flags    = flag.NewFlagSet("snapframe", flag.ExitOnError)
	confFile = flags.String("config", "", "path to config file")
)

func main() {
	var err error
	flags.Parse(os.Args[1:])

	conf, err := server.NewConfigFromFile(*confFile, os.Getenv("CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	srv := server.New(conf)
	if err := srv.Configure(); err != nil {
		log.Fatal(err)
	}

	lg.Infof("** Snap-to-Frame Server v%s at %s **", snapframe.VERSION, srv.Config.Bind)
	lg.Infof("** Engine: %s", srv.ImageEngine.Version())

	graceful.AddSignal(syscall.SIGINT, syscall.SIGTERM)
	graceful.Timeout(30 * time.Second)
	graceful.PreHook(srv.Close)
	graceful.PostHook(srv.Shutdown)

	if err := graceful.ListenAndServe(srv.Config.Bind, srv.NewRouter()); err != nil {
		lg.Fatal(err.Error())
	}
	graceful.Wait()
}
