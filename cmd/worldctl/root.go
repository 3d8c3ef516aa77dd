package main

import (
	"fmt"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/zeusync/worldsave/internal/config"
	"github.com/zeusync/worldsave/internal/core/models"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
	"github.com/zeusync/worldsave/internal/injector"
)

type rootOptions struct {
	configPath string
	logLevel   string
	profile    string

	profiler interface{ Stop() }
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "worldctl",
		Short:         "Inspect and manage stored world snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.startProfile()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.profiler != nil {
				opts.profiler.Stop()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	flags.StringVar(&opts.profile, "profile", "", "write a cpu or mem profile to the working directory")

	cmd.AddCommand(
		newListCmd(opts),
		newInspectCmd(opts),
		newVerifyCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newDeleteCmd(opts),
	)
	return cmd
}

func (o *rootOptions) startProfile() error {
	switch o.profile {
	case "":
	case "cpu":
		o.profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet)
	case "mem":
		o.profiler = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet)
	default:
		return fmt.Errorf("unknown profile %q, want cpu or mem", o.profile)
	}
	return nil
}

// toolRegistry resolves every component type to a raw payload so that
// snapshots from any game can be inspected without its component code.
func toolRegistry() registry.TypeRegistry {
	return registry.New(registry.WithFallback(models.RawType))
}

// app wires an App for one command. The returned cleanup must be called.
func (o *rootOptions) app(cmd *cobra.Command) (*injector.App, func(), error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
		if err = cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return injector.InitializeApp(cmd.Context(), cfg, toolRegistry())
}
