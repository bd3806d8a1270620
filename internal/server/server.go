package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"tableside/internal/dashboard"
	"tableside/internal/inventory"
	"tableside/internal/logger"
	"tableside/internal/menu"
	"tableside/internal/orders"
	"tableside/internal/settings"
	"tableside/internal/tables"
)

type Server struct {
	http *http.Server
	log  *logrus.Entry

	tables    tables.ServiceInterface
	menu      menu.ServiceInterface
	inventory inventory.ServiceInterface
	orders    orders.ServiceInterface
	dashboard *dashboard.Service
	profile   settings.RepositoryInterface
}

func New(
	addr string,
	log *logrus.Logger,
	tablesSvc tables.ServiceInterface,
	menuSvc menu.ServiceInterface,
	inventorySvc inventory.ServiceInterface,
	ordersSvc orders.ServiceInterface,
	dashboardSvc *dashboard.Service,
	profile settings.RepositoryInterface,
) *Server {
	s := &Server{
		log:       logger.WithComponent(log, "http_server"),
		tables:    tablesSvc,
		menu:      menuSvc,
		inventory: inventorySvc,
		orders:    ordersSvc,
		dashboard: dashboardSvc,
		profile:   profile,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/tables", s.handleListTables).Methods(http.MethodGet)
	api.HandleFunc("/tables", s.handleCreateTable).Methods(http.MethodPost)
	api.HandleFunc("/tables/stats", s.handleTableStats).Methods(http.MethodGet)
	api.HandleFunc("/tables/{id}", s.handleGetTable).Methods(http.MethodGet)
	api.HandleFunc("/tables/{id}/status", s.handleSetTableStatus).Methods(http.MethodPatch)

	api.HandleFunc("/menu/items", s.handleListMenu).Methods(http.MethodGet)
	api.HandleFunc("/menu/items", s.handleCreateMenuItem).Methods(http.MethodPost)
	api.HandleFunc("/menu/items/popular", s.handleListPopular).Methods(http.MethodGet)
	api.HandleFunc("/menu/items/{id}", s.handleGetMenuItem).Methods(http.MethodGet)
	api.HandleFunc("/menu/items/{id}", s.handleUpdateMenuItem).Methods(http.MethodPut)
	api.HandleFunc("/menu/items/{id}", s.handleDeleteMenuItem).Methods(http.MethodDelete)
	api.HandleFunc("/menu/categories", s.handleCategories).Methods(http.MethodGet)

	api.HandleFunc("/inventory", s.handleListInventory).Methods(http.MethodGet)
	api.HandleFunc("/inventory", s.handleCreateInventoryItem).Methods(http.MethodPost)
	api.HandleFunc("/inventory/stats", s.handleInventoryStats).Methods(http.MethodGet)
	api.HandleFunc("/inventory/{id}", s.handleGetInventoryItem).Methods(http.MethodGet)
	api.HandleFunc("/inventory/{id}", s.handleUpdateInventoryItem).Methods(http.MethodPut)
	api.HandleFunc("/inventory/{id}", s.handleDeleteInventoryItem).Methods(http.MethodDelete)
	api.HandleFunc("/inventory/{id}/stock", s.handleUpdateStock).Methods(http.MethodPatch)

	api.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders", s.handleCreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/stats", s.handleOrderStats).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", s.handleDeleteOrder).Methods(http.MethodDelete)
	api.HandleFunc("/orders/{id}/status", s.handleSetOrderStatus).Methods(http.MethodPatch)

	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)

	api.HandleFunc("/settings/restaurant", s.handleGetRestaurant).Methods(http.MethodGet)
	api.HandleFunc("/settings/restaurant", s.handleUpdateRestaurant).Methods(http.MethodPut)
	api.HandleFunc("/settings/theme/preview", s.handleThemePreview).Methods(http.MethodPost)

	return s.logMiddleware(r)
}

func (s *Server) logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":      r.Method,
			"url":         r.URL.Path,
			"remoteAddr":  r.RemoteAddr,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request handled")
	})
}

// Run serves until ctx is cancelled, then drains with a short grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()
	s.log.WithField("addr", s.http.Addr).Info("http server started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
		s.log.Info("http server stopped")
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
