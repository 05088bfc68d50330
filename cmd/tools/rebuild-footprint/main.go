// Command rebuild-footprint replays a fix log into a fresh region snapshot
// without starting the HTTP service. Useful after tuning changes or when a
// snapshot file has gone bad.
package main

import (
	"flag"
	"log"

	"github.com/fogbound/fogmap/internal/fixlog"
	"github.com/fogbound/fogmap/internal/footprint"
)

func main() {
	var dbPath string
	var snapshotPath string

	flag.StringVar(&dbPath, "db", "fixes.db", "path to the fix log database")
	flag.StringVar(&snapshotPath, "snapshot", "footprint.snap", "path to write the rebuilt snapshot")
	flag.Parse()

	fixdb, err := fixlog.NewDB(dbPath)
	if err != nil {
		log.Fatalf("open fix log: %v", err)
	}
	defer fixdb.Close()

	fixes, err := fixdb.FixesAsc()
	if err != nil {
		log.Fatalf("read fix log: %v", err)
	}
	if len(fixes) == 0 {
		log.Fatal("fix log is empty, nothing to rebuild")
	}

	manager := footprint.NewManager(footprint.ManagerConfig{})
	if err := manager.RebuildFromFixes(fixes); err != nil {
		log.Fatalf("rebuild: %v", err)
	}

	store := footprint.NewFileSnapshotStore(nil, snapshotPath)
	if err := manager.Persist(store, "offline_rebuild"); err != nil {
		log.Fatalf("write snapshot: %v", err)
	}

	log.Printf("rebuilt %d fixes into %s: area=%.1f m², tunnels=%d",
		len(fixes), snapshotPath,
		manager.ExploredAreaSquareMeters(), len(manager.TunnelSegments()))
}
