package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/streamflow/internal/log"
	"github.com/chrissnell/streamflow/internal/report"
	"github.com/chrissnell/streamflow/internal/survey"
	"github.com/chrissnell/streamflow/pkg/config"
	"github.com/chrissnell/streamflow/pkg/discharge"
)

func main() {
	var (
		cfgFile   = flag.String("config", "streamflow.yaml", "Configuration file holding survey defaults (optional)")
		method    = flag.String("method", "", "Method when the survey does not name one: 1|0.6y, 2|0.8y-0.2y, 3|surface")
		factor    = flag.Float64("conversion-factor", 0, "Surface velocity conversion factor (default from config, usually 0.85)")
		surface   = flag.Float64("surface-velocity", 0, "Surface velocity in ft/s when a surface method survey does not give one")
		csvOutput = flag.String("csv", "", "Optional CSV output file for the profile series")
		jsonOut   = flag.Bool("json", false, "Print the result and profile as JSON instead of text")
		quiet     = flag.Bool("quiet", false, "Only print the total")
		debug     = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] survey.{yaml,json,csv}\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.NewYAMLProvider(*cfgFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	defaults := survey.Defaults{
		ConversionFactor: cfg.Survey.DefaultConversionFactor,
		SurfaceVelocity:  *surface,
	}
	methodName := cfg.Survey.DefaultMethod
	if *method != "" {
		methodName = *method
	}
	if defaults.Method, err = discharge.ParseMethod(methodName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "conversion-factor" {
			defaults.ConversionFactor = *factor
		}
	})

	s, err := survey.Load(flag.Arg(0), defaults)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading survey: %v\n", err)
		os.Exit(1)
	}
	log.Debugw("survey loaded", "name", s.Name, "method", s.Method, "sections", len(s.Sections))

	printSections := !*quiet && !*jsonOut
	if printSections {
		fmt.Printf("Survey %s: %s, %d sections\n\n", s.Name, s.Method.Title(), s.PointCount())
	}

	res, err := s.Stream(func(snap discharge.Snapshot) error {
		if !printSections {
			return nil
		}
		if err := report.WriteSnapshot(os.Stdout, s.Method, snap); err != nil {
			return err
		}
		fmt.Println()
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing discharge: %v\n", err)
		os.Exit(1)
	}

	profile := discharge.NewProfile(res)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"name": s.Name, "result": res, "profile": profile}); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
			os.Exit(1)
		}
	} else {
		if printSections {
			if err := report.WriteSummary(os.Stdout, profile); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing summary: %v\n", err)
				os.Exit(1)
			}
			fmt.Println()
		}
		if err := report.WriteTotal(os.Stdout, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing total: %v\n", err)
			os.Exit(1)
		}
	}

	if *csvOutput != "" {
		if err := exportCSV(*csvOutput, profile); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		if !*jsonOut {
			fmt.Printf("\nProfile exported to: %s\n", *csvOutput)
		}
	}
}

func exportCSV(path string, p discharge.Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteProfileCSV(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
