package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"casino/economy-bot/application"
	"casino/economy-bot/domain/entities"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// RouletteAdmin forces the result of an open roulette round
type RouletteAdmin interface {
	SetResult(ctx context.Context, guildID, channelID int64, slot int) error
}

// ShopAdmin manages the shop catalogue
type ShopAdmin interface {
	AddItem(ctx context.Context, guildID int64, item *entities.ShopItem) error
	UpdateItem(ctx context.Context, guildID int64, item *entities.ShopItem) error
	DeactivateItem(ctx context.Context, guildID, itemID int64) (int64, error)
}

// CrateAdmin manages the drop tables of crates
type CrateAdmin interface {
	ListRewards(ctx context.Context, guildID int64, crateExternalID string) ([]*entities.CrateReward, error)
	AddReward(ctx context.Context, guildID int64, reward *entities.CrateReward) error
	UpdateReward(ctx context.Context, guildID int64, reward *entities.CrateReward) error
	DeleteReward(ctx context.Context, guildID, rewardID int64) error
}

// GrantMonitor exposes the scheduled temporary role removals
type GrantMonitor interface {
	PendingRevocations() []application.PendingRevocation
}

// Server is the internal admin HTTP API
type Server struct {
	roulette RouletteAdmin
	shop     ShopAdmin
	crates   CrateAdmin
	grants   GrantMonitor
}

// NewServer creates the admin API
func NewServer(roulette RouletteAdmin, shop ShopAdmin, crates CrateAdmin, grants GrantMonitor) *Server {
	return &Server{
		roulette: roulette,
		shop:     shop,
		crates:   crates,
		grants:   grants,
	}
}

// Routes builds the router of the admin API
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger,
	)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Put("/roulette/{channelID}/result", s.setRouletteResult)
		r.Get("/grants/pending", s.pendingGrants)

		r.Route("/guilds/{guildID}", func(r chi.Router) {
			r.Post("/shop/items", s.addShopItem)
			r.Put("/shop/items/{itemID}", s.updateShopItem)
			r.Delete("/shop/items/{itemID}", s.deactivateShopItem)
			r.Get("/crates/{externalID}/rewards", s.listCrateRewards)
			r.Post("/crates/{externalID}/rewards", s.addCrateReward)
			r.Put("/crates/rewards/{rewardID}", s.updateCrateReward)
			r.Delete("/crates/rewards/{rewardID}", s.deleteCrateReward)
		})
	})

	return r
}

// ListenAndServe serves on localhost until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	server := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Admin API shutdown failed")
		}
	}()

	log.Infof("Admin API listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin API server error: %w", err)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("Admin API request")
	})
}
