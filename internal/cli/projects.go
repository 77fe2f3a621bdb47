package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/internal/ui"
)

func (a *app) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"p"},
		Short:   "Manage saved projects",
	}
	cmd.AddCommand(
		a.projectsListCmd(),
		a.projectsShowCmd(),
		a.projectsImportCmd(),
		a.projectsExportCmd(),
		a.projectsDeleteCmd(),
	)
	return cmd
}

// withStore opens the store for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(chainchart.Store) error) error {
	store, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(store)
}

func mustProject(ctx context.Context, store chainchart.Store, id string) (*chainchart.Project, error) {
	p, err := store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", chainchart.ErrProjectNotFound, id)
	}
	return p, nil
}

func (a *app) projectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store chainchart.Store) error {
				projects, err := store.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(projects) == 0 {
					fmt.Fprintln(out, ui.Subtle.Sprint("  no projects yet"))
					return nil
				}
				rows := make([][]string, 0, len(projects))
				for _, p := range projects {
					rows = append(rows, []string{p.ID, p.Name, string(p.Status), p.UpdatedAt.Local().Format(time.DateTime)})
				}
				ui.Table(out, []string{"ID", "NAME", "STATUS", "UPDATED"}, rows)
				return nil
			})
		},
	}
}

func (a *app) projectsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project and its nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store chainchart.Store) error {
				p, err := mustProject(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "  %s %s\n", ui.Brand.Sprint(p.Name), ui.Subtle.Sprint(string(p.Status)))
				if p.Description != "" {
					fmt.Fprintf(out, "  %s\n", p.Description)
				}
				fmt.Fprintf(out, "  %s\n\n", ui.Subtle.Sprintf("%d nodes, %d edges, updated %s",
					len(p.Nodes), len(p.Edges), p.UpdatedAt.Local().Format(time.DateTime)))

				rows := make([][]string, 0, len(p.Nodes))
				for _, n := range p.Nodes {
					rows = append(rows, []string{
						n.ID,
						ui.NodeColor(string(n.Type)).Sprint(string(n.Type)),
						n.Label,
						strconv.FormatFloat(n.Position.X, 'f', -1, 64) + "," + strconv.FormatFloat(n.Position.Y, 'f', -1, 64),
					})
				}
				ui.Table(out, []string{"ID", "TYPE", "LABEL", "POSITION"}, rows)
				return nil
			})
		},
	}
}

func (a *app) projectsImportCmd() *cobra.Command {
	var (
		name   string
		desc   string
		status string
	)

	cmd := &cobra.Command{
		Use:   "import <file> [id]",
		Short: "Save a diagram file as a new project, or replace an existing one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(cmd, args[0])
			if err != nil {
				return err
			}
			p := &chainchart.Project{
				Name:        name,
				Description: desc,
				Status:      chainchart.ProjectStatus(status),
				Nodes:       d.Nodes,
				Edges:       d.Edges,
			}
			if len(args) == 2 {
				p.ID = args[1]
			}

			return a.withStore(cmd.Context(), func(store chainchart.Store) error {
				if p.ID != "" {
					existing, err := mustProject(cmd.Context(), store, p.ID)
					if err != nil {
						return err
					}
					if p.Name == "" {
						p.Name = existing.Name
					}
					if p.Description == "" {
						p.Description = existing.Description
					}
					if p.Status == "" {
						p.Status = existing.Status
					}
				}
				id, err := store.SaveProject(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s saved %s\n", ui.StatusIcon(true), id)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "project name")
	f.StringVar(&desc, "description", "", "project description")
	f.StringVar(&status, "status", "", "draft, active or archived")
	return cmd
}

func (a *app) projectsExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a project's diagram as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store chainchart.Store) error {
				p, err := mustProject(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				data, err := chainchart.MarshalDiagram(p.Diagram())
				if err != nil {
					return err
				}
				data = append(data, '\n')

				switch output {
				case "":
					output = chainchart.ExportFileName(p.Name, time.Now())
				case "-":
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.StatusIcon(true), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default <name>_<millis>.json)")
	return cmd
}

func (a *app) projectsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete projects",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store chainchart.Store) error {
				for _, id := range args {
					if err := store.DeleteProject(cmd.Context(), id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s deleted %s\n", ui.StatusIcon(true), id)
				}
				return nil
			})
		},
	}
}
