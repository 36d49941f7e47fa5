package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/lnshout/shoutout/internal/application"
	"github.com/lnshout/shoutout/internal/config"
	"github.com/lnshout/shoutout/internal/infrastructure/bus"
	badgerdb "github.com/lnshout/shoutout/internal/infrastructure/db/badger"
	"github.com/lnshout/shoutout/internal/infrastructure/hooks"
	"github.com/lnshout/shoutout/internal/infrastructure/lightning/lnd"
	"github.com/lnshout/shoutout/internal/interface/web"
	"github.com/lnshout/shoutout/lnurl"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "run the shoutout daemon",
	Action: serve,
}

var createAppCommand = &cli.Command{
	Name:  "create-app",
	Usage: "create a new shoutout app",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Usage:    "the app name",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "currency",
			Usage: "wall currency (defaults to the configured one)",
		},
		&cli.StringFlag{
			Name:  "address",
			Usage: "lightning address identifier (the part before the @)",
		},
	},
	Action: createApp,
}

func serve(_ *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log.SetLevel(log.Level(cfg.LogLevel))

	appRepo, err := badgerdb.NewAppRepository(cfg.DbDir, nil)
	if err != nil {
		return err
	}
	defer appRepo.Close()

	invoiceRepo, err := badgerdb.NewInvoiceRepository(cfg.DbDir, nil)
	if err != nil {
		return err
	}
	defer invoiceRepo.Close()

	lightning, err := lnd.NewClient(lnd.Config{
		Address:     cfg.LndAddress,
		Network:     cfg.Network,
		MacaroonDir: cfg.LndMacaroonDir,
		TLSPath:     cfg.LndTLSPath,
	})
	if err != nil {
		return err
	}
	defer lightning.Close()

	eventBus := bus.New()
	defer eventBus.Close()

	svc := application.NewService(
		application.Config{
			ChainParams:     cfg.ChainParams,
			DefaultCurrency: cfg.DefaultCurrency,
			InvoiceExpiry:   cfg.InvoiceExpiry,
			ReceiptsEnabled: cfg.ReceiptsEnabled,
		},
		appRepo, invoiceRepo, lightning, hooks.NewChain(), eventBus,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := application.NewWatcher(invoiceRepo, lightning, eventBus, 0)
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	sweeper := application.NewSweeper(invoiceRepo)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	webSvc, err := web.NewService(svc, web.Config{
		AdminToken:   cfg.AdminToken,
		DefaultAppID: cfg.DefaultAppID,
		PublicScheme: cfg.PublicScheme,
		PublicHost:   cfg.PublicHost,
		PathBase:     cfg.PathBase,
	})
	if err != nil {
		return err
	}

	printPayCode(cfg)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: webSvc,
	}
	errChan := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("starting service...")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
	}

	log.Info("shutting down service...")
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), 10*time.Second,
	)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// printPayCode prints the static LNURL-pay code of the default app so it can
// be turned into a QR code or pasted into a wallet.
func printPayCode(cfg *config.Config) {
	if cfg.DefaultAppID == "" || cfg.PublicHost == "" {
		return
	}

	payURL := fmt.Sprintf(
		"%s://%s%s/api/v1/shoutout/lnurl/%s/pay",
		cfg.PublicScheme, cfg.PublicHost, cfg.PathBase, cfg.DefaultAppID,
	)
	payCode, err := lnurl.EncodeURL(payURL)
	if err != nil {
		log.WithError(err).Warn("could not encode pay code")
		return
	}

	fmt.Printf(""+
		"=======================================\n"+
		"Your static LNURL-pay code is:\n"+
		"- %s\n"+
		"- lightning:%s\n"+
		"=======================================\n",
		payCode, payCode,
	)
}

func createApp(ctx *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appRepo, err := badgerdb.NewAppRepository(cfg.DbDir, nil)
	if err != nil {
		return err
	}
	defer appRepo.Close()

	svc := application.NewService(
		application.Config{
			ChainParams:     cfg.ChainParams,
			DefaultCurrency: cfg.DefaultCurrency,
			InvoiceExpiry:   cfg.InvoiceExpiry,
			ReceiptsEnabled: cfg.ReceiptsEnabled,
		},
		appRepo, nil, nil, hooks.NewChain(), nil,
	)

	app, err := svc.CreateApp(
		ctx.Context, ctx.String("name"),
		ctx.String("currency"), ctx.String("address"),
	)
	if err != nil {
		return err
	}

	fmt.Printf("created app %s (%q)\n", app.ID, app.Name)
	fmt.Printf("wall: /apps/%s/shoutout\n", app.ID)
	return nil
}
