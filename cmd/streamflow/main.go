package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/streamflow/internal/app"
	"github.com/chrissnell/streamflow/internal/constants"
	"github.com/chrissnell/streamflow/internal/log"
	"github.com/chrissnell/streamflow/pkg/config"
	"github.com/joho/godotenv"
)

func main() {
	cfgFile := flag.String("config", "streamflow.yaml", "Path to the YAML configuration file; defaults apply when it does not exist")
	envFile := flag.String("env-file", ".env", "Optional dotenv file with STREAMFLOW_* overrides")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("streamflow %s\n", constants.Version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// A missing .env is normal; variables already set in the environment win.
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Warnf("could not read %s: %v", *envFile, err)
	}

	filename, _ := filepath.Abs(*cfgFile)
	provider := config.NewYAMLProvider(filename)
	if _, err := provider.LoadConfig(); err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	application := app.New(provider, log.Logger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}
