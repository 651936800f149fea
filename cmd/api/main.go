package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gardenlog/core/cmd/api/commands"
)

// @title GardenLog API
// @version 1.0
// @description Personal gardening tracker: plants, planting cycles, lifecycle events and tasks

// @host localhost:8080
// @BasePath /api/v1

func main() {
	rootCmd := &cobra.Command{
		Use:   "gardenlog",
		Short: "GardenLog API Server",
		Long:  `GardenLog is a personal gardening tracker that records plants, yearly planting cycles, lifecycle events and tasks, with a dashboard summarizing current activity.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
