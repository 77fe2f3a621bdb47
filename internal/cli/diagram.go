package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/internal/ui"
)

func (a *app) diagramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "diagram",
		Aliases: []string{"d"},
		Short:   "Inspect diagram files",
	}
	cmd.AddCommand(diagramValidateCmd(), diagramFmtCmd(), diagramStatsCmd())
	return cmd
}

func diagramValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check diagram files against the schema and port rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				d, err := readDiagram(cmd, path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "  %s %s %s\n", ui.StatusIcon(false), path, ui.Subtle.Sprint(err.Error()))
					continue
				}
				fmt.Fprintf(out, "  %s %s %s\n", ui.StatusIcon(true), path,
					ui.Subtle.Sprintf("%d nodes, %d edges", len(d.Nodes), len(d.Edges)))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d diagrams invalid", failed, len(args))
			}
			return nil
		},
	}
}

func diagramFmtCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a diagram in canonical form",
		Long:  "Rewrite a diagram with two-space indentation and {} for missing metadata.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(cmd, args[0])
			if err != nil {
				return err
			}

			g := chainchart.NewGraph()
			g.Replace(*d)
			data, err := g.Export()
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if !write || args[0] == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			return os.WriteFile(args[0], data, info.Mode().Perm())
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	return cmd
}

func diagramStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Summarise node types and port usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			st := collectStats(*d)

			var rows [][]string
			for _, t := range chainchart.NodeTypes {
				if st.nodes[t] == 0 {
					continue
				}
				rows = append(rows, []string{
					ui.NodeColor(string(t)).Sprint(string(t)),
					strconv.Itoa(st.nodes[t]),
				})
			}
			fmt.Fprintf(out, "  %s\n\n", ui.Brand.Sprint(args[0]))
			ui.Table(out, []string{"TYPE", "NODES"}, rows)
			fmt.Fprintf(out, "\n  %s %d\n", ui.Subtle.Sprint("edges       "), len(d.Edges))
			fmt.Fprintf(out, "  %s %d of %d\n", ui.Subtle.Sprint("ports wired "), st.wired, st.ports)
			if st.isolated > 0 {
				fmt.Fprintf(out, "  %s %d isolated nodes\n", ui.WarnIcon(), st.isolated)
			}
			return nil
		},
	}
}

type diagramStats struct {
	nodes    map[chainchart.NodeType]int
	ports    int
	wired    int
	isolated int
}

// collectStats counts nodes per type, ports with at least one edge and
// nodes with no edges at all.
func collectStats(d chainchart.Diagram) diagramStats {
	st := diagramStats{nodes: map[chainchart.NodeType]int{}}

	used := map[string]bool{}
	touched := map[string]bool{}
	for _, e := range d.Edges {
		used[e.From] = true
		used[e.To] = true
		if ref, err := chainchart.ParsePortRef(e.From); err == nil {
			touched[ref.NodeID] = true
		}
		if ref, err := chainchart.ParsePortRef(e.To); err == nil {
			touched[ref.NodeID] = true
		}
	}

	for _, n := range d.Nodes {
		st.nodes[n.Type]++
		if !touched[n.ID] {
			st.isolated++
		}
		for _, p := range chainchart.Ports(n.Type) {
			st.ports++
			if used[chainchart.PortRef{NodeID: n.ID, Side: p.Side}.String()] {
				st.wired++
			}
		}
	}
	return st
}
