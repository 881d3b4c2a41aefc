// Package app composes the client: configuration, logging, the REST
// client, the local cache and the state stores, wired into a single fx
// application with the TUI as its lifecycle root.
package app

import (
	"context"

	"github.com/mingleapp/mingle/internal/account"
	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/bus"
	"github.com/mingleapp/mingle/internal/chat"
	"github.com/mingleapp/mingle/internal/config"
	"github.com/mingleapp/mingle/internal/delivery"
	"github.com/mingleapp/mingle/internal/identity"
	"github.com/mingleapp/mingle/internal/lock"
	"github.com/mingleapp/mingle/internal/logging"
	"github.com/mingleapp/mingle/internal/profile"
	"github.com/mingleapp/mingle/internal/store"
	"github.com/mingleapp/mingle/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved account configuration passed to the fx module.
type Params struct {
	AccountName string
}

// Module returns the fx module for the client, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("client",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideClient,
			provideIdentity,
			provideChatStore,
			provideProfileStore,
			provideApp,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	return config.Load(account.ConfigPath())
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(account.LogPath(p.AccountName), p.AccountName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := account.EnsureDir(p.AccountName); err != nil {
		return nil, err
	}
	logger.Info("acquiring account lock", zap.String("account", p.AccountName))
	l, err := lock.Acquire(account.Dir(p.AccountName))
	if err != nil {
		return nil, err
	}
	logger.Info("account lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := account.CacheDBPath(p.AccountName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("cache initialized", zap.String("path", dbPath))
	return db, nil
}

func provideClient(cfg *config.Config, logger *zap.Logger) (*api.Client, error) {
	return api.New(cfg.ServerURL, logger)
}

func provideIdentity(p Params, client *api.Client, b *bus.Bus, logger *zap.Logger) *identity.Provider {
	return identity.New(client, b, logger, account.TokenPath(p.AccountName))
}

func provideChatStore(client *api.Client, db *store.DB, b *bus.Bus, ident *identity.Provider, logger *zap.Logger) *chat.Store {
	return chat.NewStore(client, db, b, logger, ident, delivery.DefaultCadence())
}

func provideProfileStore(client *api.Client, b *bus.Bus, ident *identity.Provider, logger *zap.Logger) *profile.Store {
	return profile.NewStore(client, ident, b, logger)
}

func provideApp(p Params, client *api.Client, ident *identity.Provider, chats *chat.Store, profiles *profile.Store, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *tui.App {
	return tui.NewApp(client, ident, chats, profiles, b, cfg, p.AccountName, logger)
}

func registerLifecycle(lc fx.Lifecycle, sh fx.Shutdowner, app *tui.App, chats *chat.Store, profiles *profile.Store, ident *identity.Provider, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			chats.Start(context.Background())
			profiles.Start(context.Background())

			// A persisted session skips the login page.
			if ident.Resume() {
				logger.Info("session resumed")
			}

			go func() {
				if err := app.Run(); err != nil {
					logger.Error("tui exited with error", zap.Error(err))
				}
				_ = sh.Shutdown()
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			app.Stop()
			chats.Stop()
			profiles.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing cache", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
