// ABOUTME: CLI command to inspect the knowledge graph of a corpus
// ABOUTME: Lists nodes, or shows one entity with its relations and neighbors
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	graphLimit int
)

// NewGraphCmd creates the graph command
func NewGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [name]",
		Short: "Inspect the knowledge graph",
		Long: `Without a name, print node and edge counts and list entities.
With a name, show that entity, its relations and its neighbors. Names that do
not match exactly are looked up case-insensitively by substring.

Examples:
  bookrag graph
  bookrag graph "Captain Ahab"
  bookrag graph --limit 100`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGraph,
	}

	cmd.Flags().IntVar(&graphLimit, "limit", 25, "Maximum entities or relations to show")

	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(graphLimit, "limit"); err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), cmd, true, llmOverrides{})
	if err != nil {
		return err
	}
	defer s.Close()

	g := s.store.Graph()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		nodes := g.Nodes()
		if outputFormat == "json" {
			return writeJSON(out, map[string]interface{}{
				"nodes": g.NodeCount(),
				"edges": g.EdgeCount(),
				"list":  nodes,
			})
		}
		fmt.Fprintf(out, "%d nodes, %d edges\n", g.NodeCount(), g.EdgeCount())
		if len(nodes) == 0 {
			return nil
		}
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "NAME\tTYPE\tDESCRIPTION\n")
		fmt.Fprintf(w, "----\t----\t-----------\n")
		for i, n := range nodes {
			if i == graphLimit {
				break
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", truncate(n.Name, 30), n.Type, truncate(oneLine(n.Description), 60))
		}
		_ = w.Flush()
		if len(nodes) > graphLimit {
			fmt.Fprintf(out, "... and %d more\n", len(nodes)-graphLimit)
		}
		return nil
	}

	name := strings.TrimSpace(args[0])
	node, ok := g.Node(name)
	if !ok {
		matches := g.FindNodes(name, graphLimit)
		if len(matches) == 0 {
			return fmt.Errorf("no entity matching %q", name)
		}
		if len(matches) > 1 {
			fmt.Fprintf(out, "%d entities match %q:\n", len(matches), name)
			for _, m := range matches {
				fmt.Fprintf(out, "  %s\n", m)
			}
			return nil
		}
		node, _ = g.Node(matches[0])
	}

	relations := g.Relations(node.Name, graphLimit)
	neighbors := g.Neighbors(node.Name)

	if outputFormat == "json" {
		return writeJSON(out, map[string]interface{}{
			"node":      node,
			"relations": relations,
			"neighbors": neighbors,
		})
	}

	fmt.Fprintf(out, "%s (%s)\n", node.Name, node.Type)
	if node.Description != "" {
		fmt.Fprintf(out, "%s\n", node.Description)
	}
	if len(relations) > 0 {
		fmt.Fprintf(out, "\nRelations:\n")
		for _, r := range relations {
			fmt.Fprintf(out, "  %s %s %s\n", r.Source, r.Relation, r.Target)
		}
	}
	if len(neighbors) > 0 {
		fmt.Fprintf(out, "\nNeighbors: %s\n", strings.Join(neighbors, ", "))
	}
	return nil
}
