package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayrahq/ayra/internal/carousel"
	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/metrics"
	"github.com/ayrahq/ayra/internal/rpcd"
	"github.com/ayrahq/ayra/internal/site"
	"github.com/ayrahq/ayra/internal/waitlist"
)

var (
	serveAddr    string
	serveRPCPort int
	serveNoRPC   bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default from site.addr)")
	serveCmd.Flags().IntVar(&serveRPCPort, "rpc-port", 0, "gRPC port (default from rpc.port)")
	serveCmd.Flags().BoolVar(&serveNoRPC, "no-rpc", false, "do not start the gRPC daemon")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the landing site and the playback daemon",
	Long: `Serve the Ayra landing site over HTTP and the playback service over gRPC.

The site exposes the landing page, a JSON API, the /ws/playback websocket
and Prometheus metrics at /metrics. Both servers stop on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig()
		siteCfg := cfg.Site
		if serveAddr != "" {
			siteCfg.Addr = serveAddr
		}

		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		themes, closer, err := newThemeStore(database)
		if err != nil {
			return err
		}
		defer closer.Close()

		eventRepo := db.NewEventRepository(database)
		collector := metrics.NewCollector()
		pcfg := playbackConfig(cfg)

		siteServer := site.NewServer(siteCfg, site.Deps{
			Catalog:    catalog,
			Themes:     themes,
			Waitlist:   waitlist.NewService(db.NewSignupRepository(database), eventRepo),
			Events:     eventRepo,
			Metrics:    collector,
			Playback:   pcfg,
			ReplyDelay: cfg.Demo.ReplyDelay,
			Slides:     carousel.DefaultSlides(),
			Autoplay:   cfg.Carousel.Autoplay,
			Interval:   cfg.Carousel.Interval,
		}, logging.Component("site"))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return siteServer.Run(gctx)
		})

		rpcEnabled := cfg.RPC.Enabled && !serveNoRPC
		if rpcEnabled {
			daemon, err := rpcd.New(cfg, logging.Component("rpcd"), rpcd.Options{
				Port:    serveRPCPort,
				Version: version,
				Deps: rpcd.Deps{
					Catalog:    catalog,
					Events:     eventRepo,
					Metrics:    collector,
					Playback:   pcfg,
					ReplyDelay: cfg.Demo.ReplyDelay,
				},
			})
			if err != nil {
				return err
			}
			g.Go(func() error {
				return daemon.Run(gctx)
			})
		}

		if !IsJSONOutput() && !IsJSONLOutput() {
			fmt.Printf("Serving site on http://%s\n", siteCfg.Addr)
			printKV(os.Stdout, "gRPC", formatYesNo(rpcEnabled))
			printKV(os.Stdout, "Metrics", formatYesNo(siteCfg.MetricsEnabled))
			printKV(os.Stdout, "Database", database.Path())
		}

		logger.Info().
			Str("addr", siteCfg.Addr).
			Bool("rpc", rpcEnabled).
			Int("scenarios", len(catalog.List())).
			Msg("serving")
		return g.Wait()
	},
}
