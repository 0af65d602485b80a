package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/runner"
	"github.com/srand/jolt/testrunner/pkg/utils"
	"golang.org/x/sync/errgroup"
)

var rootCmd = &cobra.Command{
	Use:          "testrunner",
	Short:        "Jolt distributed test runner",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbosity, err := cmd.Flags().GetCount("verbose")
		if err != nil {
			return err
		}
		switch {
		case verbosity >= 2:
			log.SetLevel(log.TraceLevel)
		case verbosity >= 1:
			log.SetLevel(log.DebugLevel)
		}

		// Load runner configuration from file or environment.
		config, err := LoadConfig()
		if err != nil {
			return err
		}

		log.Configure(config.Options)
		defer log.Sync()

		config.Log()

		if err := config.Validate(); err != nil {
			return err
		}

		ctx, cancel := utils.TerminateOnSignal(context.Background())
		defer cancel()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics := runner.NewMetrics(reg)

		if config.MetricsListen != "" {
			if err := serveMetrics(ctx, config.MetricsListen, reg); err != nil {
				return err
			}
		}

		summary, err := run(ctx, config, metrics)
		log.Info("Total:", summary)

		switch {
		case err != nil:
			return err
		case summary.Disconnected != nil && config.FailOnDisconnect:
			return fmt.Errorf("lost connection to coordinator: %w", summary.Disconnected)
		case !summary.Ok():
			return fmt.Errorf("%d tests failed", summary.Failed)
		}

		return nil
	},
}

// Runs config.Parallel independent runners until all of them are done.
func run(ctx context.Context, config *runner.RunnerConfig, metrics *runner.Metrics) (runner.Summary, error) {
	var (
		mu    sync.Mutex
		total runner.Summary
	)

	var reporter runner.Reporter = runner.NopReporter()
	if config.ReportResults {
		reporter = runner.NewHTTPReporter(config.RequestTimeout)
	}

	group, ctx := errgroup.WithContext(ctx)

	for n := 0; n < config.Parallel; n++ {
		identity := config.Identity()
		identity.RunnerId = utils.IndexedRunnerId(identity.RunnerId, n, config.Parallel)

		client, err := runner.NewRunnerClient(
			identity,
			config.RetryConfig(),
			runner.WithTransport(runner.NewHTTPTransport(config.RequestTimeout)),
			runner.WithMetrics(metrics),
		)
		if err != nil {
			return total, err
		}

		driver := runner.NewDriver(client, reporter)

		group.Go(func() error {
			summary, err := driver.Run(ctx)

			mu.Lock()
			total.Merge(summary)
			mu.Unlock()

			return err
		})
	}

	err := group.Wait()
	return total, err
}

func serveMetrics(ctx context.Context, listen string, gatherer prometheus.Gatherer) error {
	addr, err := utils.ParseHttpUrl(listen)
	if err != nil {
		return err
	}

	r := utils.NewEcho()
	r.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	log.Info("Serving metrics on", addr)

	go func() {
		if err := r.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed:", err)
		}
	}()

	go func() {
		<-ctx.Done()
		r.Close()
	}()

	return nil
}

func main() {
	rootCmd.Flags().StringP("connect", "c", "", "Coordinator address, host:port or URL")
	rootCmd.Flags().StringP("runner-id", "i", utils.DefaultRunnerId(), "Runner identity")
	rootCmd.Flags().StringP("revision", "r", "", "Code revision to request tests for")
	rootCmd.Flags().Int("retry-limit", 0, "Retries before the first successful request")
	rootCmd.Flags().Int("reconnect-retry-limit", 5, "Retries for each request after the first")
	rootCmd.Flags().String("retry-interval", "2s", "Delay between retries, seconds or duration")
	rootCmd.Flags().String("request-timeout", "30s", "Timeout of each coordinator request")
	rootCmd.Flags().IntP("parallel", "j", 1, "Number of runners in this process")
	rootCmd.Flags().Bool("fail-on-disconnect", false, "Fail if the coordinator could not be reached")
	rootCmd.Flags().Bool("report-results", true, "Post results to the coordinator")
	rootCmd.Flags().String("metrics-listen", "", "Serve metrics on tcp://<host>:<port>")
	rootCmd.Flags().String("log-file", "", "Also write log to this file")
	rootCmd.Flags().CountP("verbose", "v", "Verbosity (repeatable)")

	viper.BindPFlag("connect", rootCmd.Flags().Lookup("connect"))
	viper.BindPFlag("runner_id", rootCmd.Flags().Lookup("runner-id"))
	viper.BindPFlag("revision", rootCmd.Flags().Lookup("revision"))
	viper.BindPFlag("retry_limit", rootCmd.Flags().Lookup("retry-limit"))
	viper.BindPFlag("reconnect_retry_limit", rootCmd.Flags().Lookup("reconnect-retry-limit"))
	viper.BindPFlag("retry_interval", rootCmd.Flags().Lookup("retry-interval"))
	viper.BindPFlag("request_timeout", rootCmd.Flags().Lookup("request-timeout"))
	viper.BindPFlag("parallel", rootCmd.Flags().Lookup("parallel"))
	viper.BindPFlag("fail_on_disconnect", rootCmd.Flags().Lookup("fail-on-disconnect"))
	viper.BindPFlag("report_results", rootCmd.Flags().Lookup("report-results"))
	viper.BindPFlag("metrics_listen", rootCmd.Flags().Lookup("metrics-listen"))
	viper.BindPFlag("log_file", rootCmd.Flags().Lookup("log-file"))
	viper.SetDefault("log_max_size", 100)
	viper.SetDefault("log_max_backups", 3)
	viper.SetEnvPrefix("jolt")
	viper.AutomaticEnv()

	viper.SetConfigName("testrunner.yaml")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/jolt/")
	viper.AddConfigPath("$HOME/.config/jolt")
	viper.AddConfigPath(".")
	viper.ReadInConfig()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
