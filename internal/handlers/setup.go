package handlers

import (
	"database/sql"
	"sync"

	"github.com/yourorg/transitfr/internal/cache"
	"github.com/yourorg/transitfr/internal/csvio"
	"github.com/yourorg/transitfr/internal/models"
	"github.com/yourorg/transitfr/internal/otp"
	"github.com/yourorg/transitfr/internal/reconcile"
	"github.com/yourorg/transitfr/internal/regions"
	"github.com/yourorg/transitfr/internal/store"
)

// package-level dependencies
var (
	setupOnce  sync.Once
	setupMu    sync.RWMutex
	dbConn     *sql.DB
	gateway    *store.Store
	directory  *regions.Directory
	caches     *cache.Registry
	reconciler *reconcile.Service
	importer   *csvio.Importer

	clientsMu sync.Mutex
	clients   map[string]*otp.Client
)

// Setup wires shared dependencies for handlers. Call this during app bootstrap.
func Setup(db *sql.DB, regionList []models.Region) {
	setupOnce.Do(func() {
		setupMu.Lock()
		defer setupMu.Unlock()

		dbConn = db
		gateway = store.New(db)
		directory = regions.NewDirectory(regionList)
		caches = cache.NewRegistry()
		importer = csvio.NewImporter(directory, gateway)
		clients = make(map[string]*otp.Client)

		// Reconciliation wants fresh catalog data, so its clients skip the
		// cache registry.
		reconciler = reconcile.NewService(directory, gateway, func(r models.Region) reconcile.TransitAPI {
			return otp.NewClient(r, nil)
		}, nil)
	})
}

// clientFor returns the cached API client for one region, building it on
// first use.
func clientFor(regionID string) (*otp.Client, bool) {
	setupMu.RLock()
	dir := directory
	reg := caches
	setupMu.RUnlock()
	if dir == nil {
		return nil, false
	}

	region, ok := dir.Lookup(regionID)
	if !ok || !region.IsActive {
		return nil, false
	}

	clientsMu.Lock()
	defer clientsMu.Unlock()
	if c, ok := clients[regionID]; ok {
		return c, true
	}
	c := otp.NewClient(region, reg)
	clients[regionID] = c
	return c, true
}

func getGateway() *store.Store {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return gateway
}

func getDirectory() *regions.Directory {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return directory
}

func getCaches() *cache.Registry {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return caches
}

func getReconciler() *reconcile.Service {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return reconciler
}

func getImporter() *csvio.Importer {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return importer
}
