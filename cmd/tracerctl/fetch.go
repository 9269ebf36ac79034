package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"scenelink/internal/distribution"
	"scenelink/internal/tracer"
	"scenelink/internal/wire"
)

var (
	fetchOut  string
	fetchDump bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <category>",
	Short: "Request one category and summarize or save the reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := args[0]
		return withClient(cmd, func(ctx context.Context, c *tracer.Client) error {
			buf, err := c.Fetch(ctx, category)
			if err != nil {
				return err
			}
			if fetchOut != "" {
				if err := os.WriteFile(fetchOut, buf, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", fetchOut, err)
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d bytes\n", category, len(buf))
			if fetchDump {
				fmt.Fprint(out, hex.Dump(buf))
			}
			return summarize(out, category, buf)
		})
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "write the raw reply to a file")
	fetchCmd.Flags().BoolVar(&fetchDump, "hex", false, "print a hex dump of the reply")
}

func summarize(w io.Writer, category string, buf []byte) error {
	switch category {
	case distribution.CategoryHeader:
		h, err := wire.DecodeHeader(buf)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "sender=%d frame_rate=%d light_factor=%g\n", h.SenderID, h.FrameRate, h.LightIntensityFactor)
	case distribution.CategoryNodes:
		nodes, err := wire.DecodeNodes(buf)
		if err != nil {
			return err
		}
		for i, n := range nodes {
			fmt.Fprintf(w, "%4d %-8s children=%d editable=%t %s\n", i, n.Type(), n.ChildCount, n.Editable, n.Name)
		}
	case distribution.CategoryObjects:
		meshes, err := wire.DecodeMeshes(buf)
		if err != nil {
			return err
		}
		for i, m := range meshes {
			fmt.Fprintf(w, "%4d vertices=%d indices=%d bones=%d\n", i, len(m.Vertices), len(m.Indices), len(m.BoneWeights))
		}
	case distribution.CategoryMaterials:
		mats, err := wire.DecodeMaterials(buf)
		if err != nil {
			return err
		}
		for _, m := range mats {
			fmt.Fprintf(w, "%4d %s src=%s bindings=%d\n", m.Index, m.Name, m.Src, len(m.Bindings))
		}
	case distribution.CategoryTextures:
		texs, err := wire.DecodeTextures(buf)
		if err != nil {
			return err
		}
		for i, t := range texs {
			fmt.Fprintf(w, "%4d %dx%d format=%d bytes=%d\n", i, t.Width, t.Height, t.Format, len(t.Data))
		}
	}
	return nil
}
