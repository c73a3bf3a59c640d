package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ifc-viewer/ifc"
	"ifc-viewer/scene"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "ifcviewer",
	Short: "View IFC building models and select their elements",
	Long: `ifcviewer loads building models exported to glTF with IFC element ids
(the _EXPRESSID vertex attribute or per-node expressID extras) and lets you
pick single elements, which are shown with a highlight overlay.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.AddCommand(viewCmd, inspectCmd)
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// loadModels loads every path into one scene.
func loadModels(loader *ifc.Loader, paths []string) (*scene.Scene, error) {
	s := scene.NewScene()
	for _, path := range paths {
		model, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		s.AddNode(model.Node)
	}
	return s, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
