package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/drivenpend/internal/config"
	"github.com/san-kum/drivenpend/internal/forcing"
)

var (
	initPreset string
	initForce  bool
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as a parameter file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p := config.GetPreset(args[0])
				if p == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
				}
				terms, err := p.ForcingTerms()
				if err != nil {
					return err
				}
				return forcing.Format(os.Stdout, terms)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTERMS\tSTEPS\tDURATION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%d\t%d\t%.0fs\n", name, len(p.Terms), p.Steps, p.Duration)
			}
			return w.Flush()
		},
	}
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "drivenpend.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !initForce {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if initPreset != "" {
				cfg = config.GetPreset(initPreset)
				if cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", initPreset, config.ListPresets())
				}
			} else {
				cfg.TermsFile = defaultTermsFile
			}

			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&initPreset, "preset", "", "start from a preset (inline terms)")
	cmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	return cmd
}
