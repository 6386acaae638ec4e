package bot

import (
	"context"
	"fmt"

	corebootstrap "recbot/core/bootstrap"
	corecmd "recbot/core/cmd"
	coreconfig "recbot/core/config"
	coretelegram "recbot/core/telegram"
	"recbot/core/telegram/middleware"
	"recbot/core/telegram/router"
	"recbot/internal/catalog"
	"recbot/internal/session"
)

// App owns the flows and their collaborators. The transport is bound once
// the bot instance exists, before any update is processed.
type App struct {
	cfg      *AppConfig
	store    CatalogStore
	sessions *session.Store
	tr       Transport
	pageSize int
}

// New assembles an App over the given store. The transport is attached
// later via SetTransport.
func New(cfg *AppConfig, store CatalogStore) *App {
	pageSize := cfg.Bot.PageSize
	if pageSize <= 0 {
		pageSize = coreconfig.DefaultPageSize
	}
	return &App{
		cfg:      cfg,
		store:    store,
		sessions: session.NewStore(),
		pageSize: pageSize,
	}
}

// SetTransport wires the outbound message surface.
func (a *App) SetTransport(tr Transport) {
	a.tr = tr
}

// Bootstrap initializes infrastructure and builds the application.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*AppConfig)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", carrier)
	}

	res, err := corebootstrap.Run(corebootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	return New(cfg, catalog.NewRepository(res.DB)), nil
}

// TelegramRunOptions builds the full transport wiring: registry, routes and
// middleware chain.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.handleMenuLabel)

	var routes []coretelegram.Route
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		Admin: middleware.AdminOptions{IsAdmin: a.cfg.IsAdmin},
	}))
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{})...)
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin: a.cfg.IsAdmin,
	})...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.SetTransport(NewTelegramTransport(rt.Bot, rt.Dispatcher))
			return nil
		},
	}, nil
}
