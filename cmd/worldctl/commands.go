package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/worldsave/internal/core/snapshot"
	"github.com/zeusync/worldsave/internal/core/world"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			infos, err := app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tUPDATED")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Name, info.Size, info.UpdatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "inspect NAME",
		Short:   "Print the contents of a snapshot",
		Example: "worldctl inspect autosave --json",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := app.Store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s, err := snapshot.Decode(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				body, err := json.MarshalIndent(describe(s), "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(body))
				return err
			}
			return printSummary(out, args[0], s)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "dump every prefab and entity as JSON")
	return cmd
}

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	var parallel int
	cmd := &cobra.Command{
		Use:   "verify NAME...",
		Short: "Check that snapshots decode and restore cleanly",
		Long: "verify restores each snapshot into its own empty world, which checks the frame " +
			"checksum, prefab dependencies and the entity id space.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			reports := make([]string, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(parallel, 1))
			for i, name := range args {
				g.Go(func() error {
					w := world.New(app.World.Types(), world.WithLogger(app.Logger))
					if err := w.Load(ctx, app.Store, name); err != nil {
						return err
					}
					reports[i] = fmt.Sprintf("%s: ok, %d prefabs, %d entities, next id %d",
						name, w.Prefabs().Count(), w.Entities().Count(), w.Entities().NextID())
					return nil
				})
			}
			if err = g.Wait(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, report := range reports {
				if _, err = fmt.Fprintln(out, report); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "snapshots verified at once")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME [FILE]",
		Short: "Write a stored snapshot to a file, or to stdout",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := app.Store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 || args[1] == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(args[1], data, 0o644)
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "import FILE NAME",
		Short: "Store a snapshot file under NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if !force {
				if _, err = snapshot.Decode(data); err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
			}

			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return app.Store.Put(cmd.Context(), args[1], data)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "store the file without decoding it first")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME...",
		Aliases: []string{"rm"},
		Short:   "Delete stored snapshots",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, name := range args {
				if err = app.Store.Delete(cmd.Context(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printSummary(w io.Writer, name string, s *snapshot.World) error {
	mode := "verbose"
	if s.Compact() {
		mode = "compact"
	}
	freed := make([]string, len(s.FreedIDs))
	for i, id := range s.FreedIDs {
		freed[i] = strconv.FormatUint(id, 10)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "name:\t%s\n", name)
	fmt.Fprintf(tw, "mode:\t%s\n", mode)
	if s.Compact() {
		fmt.Fprintf(tw, "types:\t%s\n", strings.Join(s.TypeTable.Names, ", "))
	}
	fmt.Fprintf(tw, "prefabs:\t%d\n", len(s.Prefabs))
	fmt.Fprintf(tw, "entities:\t%d\n", len(s.Entities))
	fmt.Fprintf(tw, "next id:\t%d\n", s.NextID)
	fmt.Fprintf(tw, "freed ids:\t%s\n", strings.Join(freed, ", "))
	return tw.Flush()
}
