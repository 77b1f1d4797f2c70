package main

import (
	"context"
	"log/slog"
	"syscall"

	evbus "github.com/vardius/message-bus"

	"github.com/h44z/wg-portal-routeros/internal"
	"github.com/h44z/wg-portal-routeros/internal/adapters"
	"github.com/h44z/wg-portal-routeros/internal/app/api/core"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/handlers"
	"github.com/h44z/wg-portal-routeros/internal/app/configfile"
	"github.com/h44z/wg-portal-routeros/internal/app/notification"
	"github.com/h44z/wg-portal-routeros/internal/app/relay"
	"github.com/h44z/wg-portal-routeros/internal/app/routerapi"
	"github.com/h44z/wg-portal-routeros/internal/app/settings"
	"github.com/h44z/wg-portal-routeros/internal/config"
	"github.com/h44z/wg-portal-routeros/internal/lowlevel"
)

// main entry point for WireGuard Portal RouterOS
func main() {
	ctx := internal.SignalAwareContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	slog.Info("Starting WireGuard Portal RouterOS Service...", "version", internal.Version)

	cfg, err := config.GetConfig()
	internal.AssertNoError(err)
	internal.SetupLogging(cfg.Advanced.LogLevel, cfg.Advanced.LogPretty, cfg.Advanced.LogJson)

	cfg.LogStartupValues()

	rawDb, err := adapters.NewDatabase(cfg.Database)
	internal.AssertNoError(err)

	database, err := adapters.NewSqlRepository(rawDb)
	internal.AssertNoError(err)

	queueSize := 100
	eventBus := evbus.New(queueSize)

	metricsServer := adapters.NewMetricsServer(cfg)
	metricsServer.ConnectToMessageBus(eventBus)

	validator := settings.NewValidator()

	settingsManager, err := settings.NewManager(cfg, eventBus, database, validator)
	internal.AssertNoError(err)
	internal.AssertNoError(settingsManager.SeedDefaults(ctx))

	relayTransport := lowlevel.NewRelayClient(lowlevel.RelayOptions{
		Endpoint: cfg.RelayEndpoint(),
		Token:    cfg.Core.RelayToken,
		Timeout:  cfg.Advanced.RequestTimeout,
		Debug:    cfg.Advanced.RouterDebug,
	})
	directTransport := lowlevel.NewDirectClient(lowlevel.DirectOptions{
		Origin:      cfg.Advanced.PageOrigin,
		EnforceCors: cfg.Advanced.EnforceCors,
		VerifyTls:   cfg.Advanced.VerifyTls,
		Timeout:     cfg.Advanced.RequestTimeout,
		Debug:       cfg.Advanced.RouterDebug,
	})
	selector := lowlevel.NewTransportSelector(relayTransport, directTransport)

	var prober routerapi.Prober
	if cfg.Advanced.PingOnUnreachable {
		prober = adapters.NewIcmpProber(cfg.Advanced.PingUnprivileged)
	}

	routerManager, err := routerapi.NewManager(cfg, eventBus, settingsManager, selector, prober)
	internal.AssertNoError(err)

	notificationFeed, err := notification.NewFeed(cfg, eventBus)
	internal.AssertNoError(err)

	configFileManager, err := configfile.NewConfigFileManager(routerManager, settingsManager)
	internal.AssertNoError(err)

	// the forwarder acts as a server side client, it is not bound to a page origin
	forwarder := relay.NewForwarder(cfg, settingsManager, lowlevel.NewDirectClient(lowlevel.DirectOptions{
		VerifyTls: cfg.Advanced.VerifyTls,
		Timeout:   cfg.Advanced.RequestTimeout,
		Debug:     cfg.Advanced.RouterDebug,
	}))

	apiV1 := handlers.NewRestApi(
		handlers.NewHealthEndpoint(),
		handlers.NewRelayEndpoint(forwarder),
		handlers.NewConnectionEndpoint(routerManager),
		handlers.NewInterfaceEndpoint(routerManager, settingsManager, validator),
		handlers.NewPeerEndpoint(routerManager, settingsManager, configFileManager, validator),
		handlers.NewSettingsEndpoint(settingsManager),
		handlers.NewNotificationEndpoint(notificationFeed),
	)

	webSrv, err := core.NewServer(cfg, apiV1)
	internal.AssertNoError(err)

	if cfg.Metrics.Enabled {
		go metricsServer.Run(ctx)
	}
	go webSrv.Run(ctx, cfg.Web.ListeningAddress)

	slog.Info("Application startup complete")

	// wait until context gets cancelled
	<-ctx.Done()

	slog.Info("Stopped WireGuard Portal RouterOS Service")
}
