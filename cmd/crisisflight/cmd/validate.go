package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config file]",
	Short: "Check a simulation config file against its schema and value ranges",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("config")
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no config file given")
		}
		cfg, err := simulation.LoadConfig(path)
		if err != nil {
			_, _ = color.New(color.FgRed).Printf("%s is invalid\n", path)
			return err
		}
		_, _ = color.New(color.FgGreen).Printf("%s is valid\n", path)
		fmt.Printf("  grid %.0f, %d agents, %d crisis zones, seed %d, max %d ticks\n",
			cfg.GridSize, cfg.PopulationSize, len(cfg.CrisisRanges), cfg.Seed, cfg.MaxTicks)
		return nil
	},
}
