package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fogbound/fogmap/internal/api"
	"github.com/fogbound/fogmap/internal/config"
	"github.com/fogbound/fogmap/internal/fixlog"
	"github.com/fogbound/fogmap/internal/footprint"
	"github.com/fogbound/fogmap/internal/monitor"
	"github.com/fogbound/fogmap/internal/version"
)

var (
	devMode      = flag.Bool("dev", false, "Run in dev mode (mounts admin debugging routes)")
	listen       = flag.String("listen", ":8080", "Listen address")
	dbFile       = flag.String("db", "fixes.db", "Path to the fix log database")
	snapshotFile = flag.String("snapshot", "footprint.snap", "Path to the region snapshot file")
	autosave     = flag.Duration("autosave", 30*time.Second, "Snapshot autosave interval (0 disables)")
	bufferRadius = flag.Float64("buffer-radius", 15, "Default buffer radius in meters for fixes that do not carry one")
	tuningFile   = flag.String("tuning", "", "Optional JSON file overriding gap-classification and persistence tuning")
)

// loadFootprint restores the region from the snapshot file. A missing file
// means a fresh start. A corrupt snapshot is logged and, when the fix log
// has history, the region is rebuilt from it instead.
func loadFootprint(manager *footprint.Manager, store *footprint.FileSnapshotStore, fixdb *fixlog.DB) {
	blob, err := store.ReadSnapshot()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Print("[Footprint] no snapshot found, starting empty")
			return
		}
		log.Printf("[Footprint] failed to read snapshot: %v", err)
		return
	}

	if err := manager.LoadSnapshot(blob); err != nil {
		log.Printf("[Footprint] snapshot unusable: %v", err)
		fixes, lerr := fixdb.FixesAsc()
		if lerr != nil {
			log.Printf("[Footprint] cannot read fix log for rebuild: %v", lerr)
			return
		}
		if len(fixes) == 0 {
			log.Print("[Footprint] fix log empty, starting empty")
			return
		}
		log.Printf("[Footprint] rebuilding region from %d logged fixes", len(fixes))
		if rerr := manager.RebuildFromFixes(fixes); rerr != nil {
			log.Printf("[Footprint] rebuild failed: %v", rerr)
		}
		return
	}
	log.Printf("[Footprint] restored snapshot: area=%.1f m²", manager.ExploredAreaSquareMeters())
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	log.Printf("fogmap %s (%s) starting", version.Version, version.GitSHA)

	tuning := config.EmptyTuningConfig()
	if *tuningFile != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*tuningFile)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
	}

	fixdb, err := fixlog.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open fix log: %v", err)
	}
	defer fixdb.Close()

	manager := footprint.NewManager(footprint.ManagerConfig{Gap: tuning.GapParams()})
	store := footprint.NewFileSnapshotStore(nil, *snapshotFile)
	loadFootprint(manager, store, fixdb)

	flusher := footprint.NewSnapshotFlusher(footprint.SnapshotFlusherConfig{
		Manager:  manager,
		Store:    store,
		Interval: tuning.Autosave(*autosave),
	})

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// autosave routine: periodic snapshots plus a final flush on shutdown
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := flusher.Run(ctx); err != nil {
			log.Printf("snapshot flusher stopped with error: %v", err)
		}
		log.Print("snapshot flusher routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes (accessible only in dev mode or
		// behind a trusted proxy)
		if *devMode {
			fixdb.AttachAdminRoutes(mux)
		}

		monitor.NewWebServer(monitor.WebServerConfig{Manager: manager}).AttachRoutes(mux)

		apiMux := api.NewServer(api.Config{
			Manager:             manager,
			FixDB:               fixdb,
			Flusher:             flusher,
			SessionID:           fixlog.NewSessionID(),
			DefaultBufferRadius: tuning.BufferRadius(*bufferRadius),
		}).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		})

		server := &http.Server{
			Addr:    *listen,
			Handler: h,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
