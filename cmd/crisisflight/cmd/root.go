package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/internal/logging"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

const envPrefix = "CRISISFLIGHT"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "crisisflight",
	Short: "Crisis zone flight simulation",
	Long: `crisisflight simulates a population fleeing crisis zones toward the
capitals of neighboring countries. Runs can be watched live in a window
or executed headless with GIF/AVI, trajectory and chart exports.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "simulation config file (.json, .yaml or .yml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("countries", "configs/countries.yaml", "country data: GeoJSON (.geojson/.json) or static YAML list")
	pf.String("capitals", "", "static capitals YAML; when empty capitals are fetched online")
	pf.String("restcountries-url", "https://restcountries.com/v3.1", "capital lookup service base URL")
	pf.String("cache", "capitals.db", "sqlite cache for online capital lookups (empty disables it)")
	_ = viper.BindPFlags(pf)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(validateCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig wires CRISISFLIGHT_* environment variables onto the flags.
func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	color.NoColor = color.NoColor || viper.GetBool("no-color")
}

func newLogger() (*zap.SugaredLogger, error) {
	l, err := logging.New(viper.GetString("log-level"), viper.GetString("log-format"))
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// loadSimulationConfig returns the --config file contents over the defaults,
// or the defaults alone.
func loadSimulationConfig() (*simulation.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		return simulation.DefaultConfig(), nil
	}
	cfg, err := simulation.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}
