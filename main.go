package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/matst80/slask-intel/pkg/common"
	"github.com/matst80/slask-intel/pkg/controller"
	"github.com/matst80/slask-intel/pkg/history"
	"github.com/matst80/slask-intel/pkg/index"
	"github.com/matst80/slask-intel/pkg/messaging"
	"github.com/matst80/slask-intel/pkg/server"
	"github.com/matst80/slask-intel/pkg/storage"
	"github.com/matst80/slask-intel/pkg/suggest"
	"github.com/matst80/slask-intel/pkg/tracking"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
)

var enableProfiling = flag.Bool("profiling", true, "enable profiling endpoints")
var dataDir = flag.String("data", common.Getenv("DATA_DIR", "data"), "folder with threats.json, actors.json and tools.json")
var prefsDir = flag.String("prefs", common.Getenv("PREFS_DIR", "data/prefs"), "folder for profile preferences when redis is not configured")
var rabbitUrl = os.Getenv("RABBIT_URL")
var rabbitPrefix = common.Getenv("RABBIT_PREFIX", messaging.DefaultPrefix)
var redisUrl = os.Getenv("REDIS_URL")
var redisPassword = os.Getenv("REDIS_PASSWORD")
var suggestUrl = os.Getenv("SUGGEST_URL")
var profileSecret = common.Getenv("PROFILE_SECRET", "slask-intel")
var listenAddress = common.Getenv("LISTEN_ADDRESS", ":8080")
var debugAddress = common.Getenv("DEBUG_ADDRESS", ":8081")

var refreshInterval = envDuration("REFRESH_INTERVAL", 0)

var ready atomic.Bool

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func main() {
	flag.Parse()

	repo := index.NewMemoryRepository()
	if err := repo.LoadFiles(*dataDir); err != nil {
		log.Fatalf("Failed to load records from %s: %v", *dataDir, err)
	}
	log.Printf("Loaded %d records", repo.Len())

	var historyStore, prefsStore storage.KeyValueStore
	var hooks []common.ShutdownHook
	if redisUrl != "" {
		redisHistory := storage.NewRedisStorage(redisUrl, redisPassword, 0, "intel:session:", 24*time.Hour)
		redisPrefs := storage.NewRedisStorage(redisUrl, redisPassword, 0, "intel:profile:", 0)
		if err := redisHistory.Ping(context.Background()); err != nil {
			log.Fatalf("Failed to connect to redis at %s: %v", redisUrl, err)
		}
		historyStore, prefsStore = redisHistory, redisPrefs
		hooks = append(hooks, func(context.Context) error {
			redisPrefs.Close()
			return redisHistory.Close()
		})
		log.Printf("Using redis for sessions and preferences, url: %s", redisUrl)
	} else {
		historyStore = storage.NewMemoryStorage()
		prefsStore = storage.NewDiskStorage(*prefsDir)
		log.Printf("Using memory sessions and preferences in %s", *prefsDir)
	}

	var backend suggest.Backend
	var localSuggest *suggest.LocalBackend
	if suggestUrl != "" {
		backend = suggest.NewRemoteBackend(suggestUrl, 10, 20)
		log.Printf("Using remote suggestions from %s", suggestUrl)
	} else {
		localSuggest = suggest.NewLocalBackend(repo.All())
		backend = localSuggest
		repo.AddChangeHandler(index.ChangeHandlerFunc(func(version uint64) {
			localSuggest.Rebuild(repo.All())
		}))
	}

	var tracker controller.Tracker
	if rabbitUrl != "" {
		trk, err := tracking.NewRabbitTracking(rabbitUrl, rabbitPrefix)
		if err != nil {
			log.Fatalf("Failed to create rabbit tracking: %v", err)
		}
		tracker = trk
		hooks = append(hooks, func(context.Context) error {
			return trk.Close()
		})
	}

	opts := controller.DefaultOptions()
	opts.PageSize = envInt("ITEMS_PER_PAGE", opts.PageSize)
	srv, err := server.NewWebServer(server.Config{
		Repository:       repo,
		Suggest:          suggest.NewService(backend),
		History:          historyStore,
		Preferences:      prefsStore,
		ProfileSecret:    profileSecret,
		Tracker:          tracker,
		SessionCacheSize: envInt("SESSION_CACHE_SIZE", server.DefaultSessionCacheSize),
		HistoryCapacity:  envInt("HISTORY_CAPACITY", history.DefaultCapacity),
		Options:          opts,
		DataDir:          *dataDir,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	hooks = append([]common.ShutdownHook{func(context.Context) error {
		srv.Sessions.Close()
		return nil
	}}, hooks...)

	if rabbitUrl != "" {
		conn, err := amqp.DialConfig(rabbitUrl, amqp.Config{
			Properties: amqp.NewConnectionProperties(),
		})
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		if err := messaging.DefineTopics(conn, rabbitPrefix); err != nil {
			log.Fatalf("Failed to define topics: %v", err)
		}
		listener := messaging.NewRecordListener(repo)
		if err := listener.Connect(conn, rabbitPrefix); err != nil {
			log.Fatalf("Failed to listen for record changes: %v", err)
		}
		log.Printf("Listening for record changes on %s", rabbitPrefix)
		hooks = append(hooks, func(context.Context) error {
			return conn.Close()
		})
	}

	if refreshInterval > 0 {
		refreshCtx, stopRefresh := context.WithCancel(context.Background())
		go srv.RefreshEvery(refreshCtx, refreshInterval)
		log.Printf("Reloading %s every %v", *dataDir, refreshInterval)
		hooks = append(hooks, func(context.Context) error {
			stopRefresh()
			return nil
		})
	}

	debugMux := http.NewServeMux()
	debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.Handle("/metrics", promhttp.Handler())
	if enableProfiling != nil && *enableProfiling {
		log.Println("Profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	timeouts := common.LoadTimeoutConfig(common.DefaultTimeoutConfig())
	ready.Store(true)
	common.RunServersWithShutdown([]common.NamedServer{
		{Name: "api", Server: common.NewServerWithTimeouts(listenAddress, srv.Handler(), timeouts)},
		{Name: "debug", Server: &http.Server{Addr: debugAddress, Handler: debugMux, ReadHeaderTimeout: timeouts.ReadHeader}},
	}, timeouts.Shutdown, timeouts.Hook, hooks...)
}
