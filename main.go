package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"landtrend/adapters/excel"
	"landtrend/adapters/memory"
	"landtrend/adapters/postgres"
	"landtrend/app"
	"landtrend/domain/geom"
	"landtrend/internal"
	"landtrend/internal/api"
	"landtrend/internal/config"
	"landtrend/internal/ingest"
	"landtrend/internal/report"
	"landtrend/internal/testkit"
	"landtrend/internal/zonal"
	"landtrend/ports"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		internal.DefaultLogger.Error("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "landtrend",
		Short: "Multi-decade NDVI and land-surface-temperature trend analysis",
		Long: "landtrend ingests Landsat surface-reflectance scenes, composites them\n" +
			"into multi-year windows, fits per-pixel OLS and Mann-Kendall trends, and\n" +
			"publishes trend-statistics and time-series raster products.",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newServeCmd(), newZonalCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var demo bool
	var reportOut string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the full trend analysis and publish the products",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := signalContext()

			archive, err := openArchive(cfg, demo)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			qc := ingest.DefaultQCConfig()
			qc.MaxCloudCover = cfg.Analysis.MaxCloudCover

			params := app.RunParams{
				StartYear:   cfg.Analysis.StartYear,
				EndYear:     cfg.Analysis.EndYear,
				WindowYears: cfg.Analysis.WindowYears,
				Workers:     cfg.Analysis.Workers,
			}
			if cfg.Paths.RegionGeoJSON != "" {
				region, err := geom.LoadRegion(cfg.Paths.RegionGeoJSON)
				if err != nil {
					return err
				}
				params.Region = region
			}

			pipeline := app.NewPipeline(archive, store, qc)
			result, err := pipeline.Run(ctx, params)
			if err != nil {
				return err
			}

			if reportOut != "" {
				if err := writeReport(result.Summary, reportOut); err != nil {
					return err
				}
			}
			for _, name := range result.Products {
				fmt.Println(name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "run against a synthetic demonstration archive")
	cmd.Flags().StringVar(&reportOut, "report-out", "RUN_REPORT.md", "path for the markdown run report, empty to skip")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the exploration API over the published products",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			srv := api.NewServer(store)
			internal.DefaultLogger.Info("serving on %s", cfg.Server.Addr)
			return srv.ListenAndServe(signalContext(), cfg.Server.Addr)
		},
	}
}

func newZonalCmd() *cobra.Command {
	var seriesBand int

	cmd := &cobra.Command{
		Use:   "zonal",
		Short: "Aggregate published products over census tracts into a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Paths.TractsGeoJSON == "" {
				return fmt.Errorf("TRACTS_GEOJSON must point at a tract feature collection")
			}
			tracts, err := geom.LoadTracts(cfg.Paths.TractsGeoJSON)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			service := app.NewZonalService(store, excel.NewZonalWriter(cfg.Paths.ZonalWorkbook))
			_, err = service.Run(signalContext(), app.ZonalParams{
				Tracts:     tracts,
				SeriesBand: seriesBand,
				Codes:      zonal.DefaultClassCodes(),
			})
			return err
		},
	}
	cmd.Flags().IntVar(&seriesBand, "series-band", -1, "time-series band for the NDVI/LST medians, -1 for the last window")
	return cmd
}

// openArchive returns the scene archive. Without a demo flag there is nothing
// to analyse: scene ingestion from a live catalog is wired by embedding this
// module, not by the CLI.
func openArchive(cfg *config.Config, demo bool) (ports.SceneArchive, error) {
	if !demo {
		return nil, fmt.Errorf("no scene archive configured, pass --demo for the synthetic dataset")
	}
	kit := &testkit.Kit{Width: 64, Height: 64, CellSize: 30}
	scenes := testkit.GenerateTrendArchive(kit, testkit.TrendArchiveSpec{
		StartYear:     cfg.Analysis.StartYear,
		EndYear:       cfg.Analysis.EndYear,
		ScenesPerYear: 3,
		NDVIStart:     0.25,
		NDVIStep:      0.004,
		LSTStart:      295,
		LSTStep:       0.05,
		Noise:         0.01,
		Seed:          1,
	})
	return memory.NewArchive(scenes), nil
}

func openStore(cfg *config.Config) (ports.ProductStore, error) {
	if cfg.Database.URL == "" {
		internal.DefaultLogger.Info("no DATABASE_URL set, using in-memory product store")
		return memory.NewProductStore(), nil
	}
	return postgres.NewProductRepository(cfg.Database.URL)
}

func writeReport(summary report.RunSummary, path string) error {
	return os.WriteFile(path, []byte(summary.Markdown()), 0o644)
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx
}
