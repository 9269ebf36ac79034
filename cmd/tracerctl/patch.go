package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"scenelink/internal/tracer"
	"scenelink/internal/update"
	"scenelink/internal/wire"
)

var patchCmd = &cobra.Command{
	Use:   "patch <position|rotation|scale|color|intensity|range> <object-id> <values...>",
	Short: "Send one parameter update in tracer coordinates",
	Long: `Send one parameter update. Object ids are the 1-based editable ids
printed by "tracerctl tree". Values are in tracer coordinates:
  position x y z | rotation x y z w | scale x y z
  color r g b [a] | intensity v | range v`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil || id == 0 {
			return fmt.Errorf("object id %q: want an integer in [1, 65535]", args[1])
		}
		rec, err := buildRecord(args[0], uint16(id), args[2:])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		p, err := tracer.DialPublisher(ctx, endpoint("/updates"), clientID)
		if err != nil {
			return err
		}
		defer p.Close()
		if err := p.Send(rec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent %s to object %d\n", args[0], id)
		return nil
	},
}

func buildRecord(param string, id uint16, raw []string) (wire.Record, error) {
	v, err := parseFloats(raw)
	if err != nil {
		return wire.Record{}, err
	}
	want := func(n ...int) error {
		for _, k := range n {
			if len(v) == k {
				return nil
			}
		}
		return fmt.Errorf("%s: got %d values, want %v", param, len(v), n)
	}

	switch param {
	case "position":
		if err := want(3); err != nil {
			return wire.Record{}, err
		}
		return wire.Vec3Record(id, uint16(update.ParamPosition), mgl32.Vec3{v[0], v[1], v[2]}), nil
	case "rotation":
		if err := want(4); err != nil {
			return wire.Record{}, err
		}
		q := mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
		return wire.QuatRecord(id, uint16(update.ParamRotation), q.Normalize()), nil
	case "scale":
		if err := want(3); err != nil {
			return wire.Record{}, err
		}
		return wire.Vec3Record(id, uint16(update.ParamScale), mgl32.Vec3{v[0], v[1], v[2]}), nil
	case "color":
		if err := want(3, 4); err != nil {
			return wire.Record{}, err
		}
		c := mgl32.Vec4{v[0], v[1], v[2], 1}
		if len(v) == 4 {
			c[3] = v[3]
		}
		return wire.ColorRecord(id, uint16(update.ParamLightColor), c), nil
	case "intensity":
		if err := want(1); err != nil {
			return wire.Record{}, err
		}
		return wire.FloatRecord(id, uint16(update.ParamLightIntensity), v[0]), nil
	case "range":
		if err := want(1); err != nil {
			return wire.Record{}, err
		}
		return wire.FloatRecord(id, uint16(update.ParamLightRange), v[0]), nil
	default:
		return wire.Record{}, fmt.Errorf("unknown parameter %q", param)
	}
}

func parseFloats(raw []string) ([]float32, error) {
	out := make([]float32, len(raw))
	for i, s := range raw {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", s, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
