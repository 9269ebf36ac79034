package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"scenelink/internal/tracer"
	"scenelink/internal/wire"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Fetch the whole scene and print its hierarchy with editable ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *tracer.Client) error {
			s, err := c.FetchScene(ctx)
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), s)
			return nil
		})
	},
}

// printTree labels editable nodes with the 1-based object id patches use.
func printTree(w io.Writer, s *tracer.Scene) {
	ids := map[int]int{}
	next := 1
	for i, n := range s.Nodes {
		if n.Editable {
			ids[i] = next
			next++
		}
	}
	for _, root := range s.Roots {
		root.Walk(func(n *wire.TreeNode, depth int) {
			label := "   -"
			if id, ok := ids[n.Index]; ok {
				label = fmt.Sprintf("%4d", id)
			}
			fmt.Fprintf(w, "%s %s%s [%s]%s\n", label, strings.Repeat("  ", depth), n.Node.Name, n.Node.Type(), payloadSummary(n.Node))
		})
	}
	fmt.Fprintf(w, "\n%d nodes, %d meshes, %d materials, %d textures\n",
		len(s.Nodes), len(s.Meshes), len(s.Materials), len(s.Textures))
}

func payloadSummary(n *wire.Node) string {
	switch p := n.Payload.(type) {
	case *wire.Geometry:
		return fmt.Sprintf(" mesh=%d material=%d", p.MeshIndex, p.MaterialIndex)
	case *wire.Light:
		return fmt.Sprintf(" kind=%s intensity=%g range=%g", p.Kind, p.Intensity, p.Range)
	case *wire.Camera:
		return fmt.Sprintf(" fov=%g near=%g far=%g", p.FOV, p.Near, p.Far)
	default:
		return ""
	}
}
