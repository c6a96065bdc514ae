package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-raykernel/pkg/loaders"
	"github.com/df07/go-raykernel/pkg/probe"
	"github.com/df07/go-raykernel/pkg/stats"
	"github.com/df07/go-raykernel/pkg/transform"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/yaml"
)

const envPrefix = "RAYKERNEL"

var probeExample = `# fire the rays in probe.yaml at its shapes
%[1]s probe probe.yaml

# same, with eight workers and per-shape counters
RAYKERNEL_WORKERS=8 %[1]s probe probe.yaml --stats
`

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags may also be set from
// RAYKERNEL_<FLAG> environment variables.
func newRootCmd(out, errOut io.Writer) *cobra.Command {
	vip := viper.New()
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	root := &cobra.Command{
		Use:           "raykernel",
		Short:         "Ray-shape intersection kernel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			logger, err := newLogger(vip.GetString("log-level"), errOut)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.Int("workers", 0, "Number of parallel workers (0 = use CPU count)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("stats", false, "Print intersection counters per shape kind")
	if err := vip.BindPFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(newProbeCmd(vip), newPLYInfoCmd())
	root.PersistentPostRun = func(c *cobra.Command, args []string) {
		_ = zap.L().Sync()
	}
	return root
}

func newLogger(level string, errOut io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoder), zapcore.AddSync(errOut), lvl)
	return zap.New(core), nil
}

func newProbeCmd(vip *viper.Viper) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "probe FILE",
		Short:   "Intersect the rays of a probe file with its shapes",
		Example: fmt.Sprintf(probeExample, "raykernel"),
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runProbe(c.Context(), c.OutOrStdout(), args[0], output,
				vip.GetInt("workers"), vip.GetBool("stats"))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or yaml")
	return cmd
}

func runProbe(ctx context.Context, out io.Writer, path, output string, workers int, showStats bool) error {
	if output != "text" && output != "yaml" {
		return errors.Errorf("unknown output format %q", output)
	}
	log := zap.S()

	file, err := loaders.LoadProbeFile(path)
	if err != nil {
		return err
	}
	scene, err := probe.Build(file, filepath.Dir(path))
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := probe.Run(ctx, scene, file.ToRays(), workers)
	if err != nil {
		return err
	}
	summary := probe.Summarize(results)
	log.Infow("probe finished",
		"shapes", len(scene.Shapes),
		"rays", summary.Rays,
		"hits", summary.Hits,
		"elapsed", time.Since(start))
	if summary.Disagreement > 0 {
		log.Warnw("Intersect and IntersectP disagree", "rays", summary.Disagreement)
	}

	if output == "yaml" {
		data, err := yaml.Marshal(struct {
			Results []probe.Result `json:"results"`
			Summary probe.Summary  `json:"summary"`
		}{results, summary})
		if err != nil {
			return errors.Wrap(err, "encode results")
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if !r.Hit {
				fmt.Fprintf(out, "ray %d: miss\n", r.Index)
				continue
			}
			fmt.Fprintf(out, "ray %d: hit %s (shape %d) t=%.6g p=(%.6g, %.6g, %.6g) n=(%.4f, %.4f, %.4f)\n",
				r.Index, r.Kind, r.Shape, r.T, r.P.X, r.P.Y, r.P.Z, r.N.X, r.N.Y, r.N.Z)
		}
		fmt.Fprintf(out, "%d/%d rays hit\n", summary.Hits, summary.Rays)
	}

	if showStats {
		counts, err := stats.Snapshot()
		if err != nil {
			return err
		}
		for _, c := range counts {
			fmt.Fprintf(out, "%-12s tests=%.0f hits=%.0f\n", c.Shape, c.Tests, c.Hits)
		}
		st := scene.Aggregate.Stats()
		fmt.Fprintf(out, "%-12s nodes=%d leaves=%d depth=%d shapes=%d\n",
			"bvh", st.TotalNodes, st.LeafNodes, st.MaxDepth, st.TotalShapes)
	}
	return nil
}

func newPLYInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ply-info FILE",
		Short: "Summarize the contents of a PLY mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			logger := zap.NewStdLog(zap.L().Named("ply"))
			data, err := loaders.LoadPLY(args[0], logger)
			if err != nil {
				return err
			}
			identity := transform.IdentityTransform()
			mesh, err := data.Mesh(&identity, nil)
			if err != nil {
				return err
			}
			b := mesh.Bounds()
			out := c.OutOrStdout()
			fmt.Fprintf(out, "vertices:  %d\n", mesh.NumVertices())
			fmt.Fprintf(out, "triangles: %d\n", mesh.NumTriangles())
			fmt.Fprintf(out, "normals:   %t\n", len(data.Normals) > 0)
			fmt.Fprintf(out, "uvs:       %t\n", len(data.UVs) > 0)
			fmt.Fprintf(out, "bounds:    (%g, %g, %g) - (%g, %g, %g)\n",
				b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
			return nil
		},
	}
}
