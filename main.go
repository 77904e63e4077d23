package main

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/op/go-logging"

	"github.com/Sopor/plugin.video.retrospect/api"
	"github.com/Sopor/plugin.video.retrospect/cache"
	"github.com/Sopor/plugin.video.retrospect/channelindex"
	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/urihandler"
	"github.com/Sopor/plugin.video.retrospect/util"
	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

var log = logging.MustGetLogger("main")

const (
	fileLogFormat = "%{time:2006-01-02 15:04:05.000} - [%{level:.5s}] - %{module:-12s} - %{message}"
	xbmcLogFormat = "[" + config.AppName + "] %{module}: %{message}"

	// in-flight requests may still hold the previous fetcher
	fetcherGrace = time.Minute
)

// logLevel maps the log_level setting to a go-logging level.
func logLevel(setting int) logging.Level {
	switch setting {
	case 0:
		return logging.DEBUG
	case 1:
		return logging.INFO
	case 2:
		return logging.WARNING
	case 3:
		return logging.ERROR
	default:
		return logging.CRITICAL
	}
}

var logFile *os.File

func setupLogging(c *config.Configuration) {
	xbmcBackend := logging.NewBackendFormatter(xbmc.NewLogBackend(), logging.MustStringFormatter(xbmcLogFormat))
	backends := []logging.Backend{xbmcBackend}

	if logFile == nil {
		f, err := os.OpenFile(c.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			xbmc.Log(fmt.Sprintf("Cannot open %s: %s", c.LogFile, err), xbmc.LogError)
		} else {
			logFile = f
		}
	}
	if logFile != nil {
		fileBackend := logging.NewBackendFormatter(logging.NewLogBackend(logFile, "", 0), logging.MustStringFormatter(fileLogFormat))
		backends = append(backends, fileBackend)
	}

	leveled := logging.SetBackend(backends...)
	leveled.SetLevel(logLevel(c.LogLevel), "")
}

func installFetcher(c *config.Configuration) {
	handler, err := urihandler.FromConfig(c)
	if err != nil {
		log.Errorf("Cannot set up the http handler, using defaults: %s", err)
		handler, _ = urihandler.New(urihandler.Options{})
	}
	if old, ok := channelindex.SetFetcher(handler).(*urihandler.Handler); ok && old != nil {
		time.AfterFunc(fetcherGrace, old.Close)
	}
}

// watchConfig applies setting changes to logging and the http handler.
func watchConfig() {
	changes, _ := config.Changes.Listen()
	for v := range changes {
		c, ok := v.(*config.Configuration)
		if !ok {
			continue
		}
		setupLogging(c)
		installFetcher(c)
	}
}

func main() {
	// Make sure we are properly multithreaded.
	runtime.GOMAXPROCS(runtime.NumCPU())

	conf := config.Reload()
	if err := config.EnsureDirs(); err != nil {
		xbmc.Log(fmt.Sprintf("Cannot create profile directories: %s", err), xbmc.LogError)
	}
	setupLogging(conf)
	log.Infof("****** Starting %s daemon version %s *******", config.AppName, util.Version)

	Migrate()

	installFetcher(conf)
	go watchConfig()

	store := cache.NewFileStore(conf.CachePath)
	cache.FlushOn(store, config.Changes)

	http.Handle("/", api.Routes(store))
	addr := fmt.Sprintf(":%d", config.ListenPort)
	log.Infof("Listening on %s", util.GetHTTPHost(config.ListenPort))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Criticalf("Cannot serve on %s: %s", addr, err)
		os.Exit(1)
	}
}
