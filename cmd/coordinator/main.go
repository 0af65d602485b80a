package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/srand/jolt/testrunner/pkg/coordinator"
	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/utils"
)

var rootCmd = &cobra.Command{
	Use:          "coordinator",
	Short:        "Jolt development test coordinator",
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

		config := &coordinator.CoordinatorConfig{}
		if err := utils.UnmarshalConfig(viper.GetViper(), config); err != nil {
			return err
		}

		config.Log()

		if err := config.Validate(); err != nil {
			return err
		}

		plan, err := coordinator.LoadPlan(afero.NewOsFs(), config.Plan)
		if err != nil {
			return err
		}
		if config.Revision != "" {
			plan.Revision = config.Revision
		}

		log.Infof("Loaded %d classes, %d methods, revision %q", len(plan.Classes), plan.Methods(), plan.Revision)

		reg := prometheus.NewRegistry()
		c := coordinator.NewCoordinator(plan, coordinator.NewMetrics(reg))

		addr, _ := utils.ParseHttpUrl(config.Listen)

		r := utils.NewEcho()
		coordinator.NewHttpHandler(c, r, reg)

		ctx, cancel := utils.TerminateOnSignal(context.Background())
		defer cancel()

		go func() {
			<-ctx.Done()
			shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			r.Shutdown(shutdown)
		}()

		log.Info("Listening on", addr)

		if err := r.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		stats := c.Statistics()
		log.Infof("Assigned %d of %d classes to %d runners: %d passed, %d failed, %d skipped",
			stats.Assigned, len(plan.Classes), stats.Runners, stats.Passed, stats.Failed, stats.Skipped)
		return nil
	},
}

func main() {
	rootCmd.Flags().StringP("listen", "l", "tcp://:8080", "Address to listen on")
	rootCmd.Flags().StringP("plan", "p", "plan.yaml", "Test plan file")
	rootCmd.Flags().StringP("revision", "r", "", "Revision to serve, overrides the plan")
	rootCmd.Flags().CountP("verbose", "v", "Verbosity (repeatable)")

	viper.BindPFlag("listen", rootCmd.Flags().Lookup("listen"))
	viper.BindPFlag("plan", rootCmd.Flags().Lookup("plan"))
	viper.BindPFlag("revision", rootCmd.Flags().Lookup("revision"))
	viper.SetEnvPrefix("jolt")
	viper.AutomaticEnv()

	viper.SetConfigName("coordinator.yaml")
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
