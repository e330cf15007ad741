package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Carmen-Shannon/oxy-scene/engine"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/debug"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
	"github.com/Carmen-Shannon/oxy-scene/examples"
)

// cli holds the flags and the logger shared by the commands.
type cli struct {
	logger *zap.Logger

	verbose     bool
	debugConfig string
	validate    bool
	logScripts  bool

	frames   int
	fps      float64
	watch    bool
	profile  bool
	windowed bool
	workers  int

	program string
}

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. A nil logger is built from the flags before any
// command runs.
func newRootCmd(logger *zap.Logger) *cobra.Command {
	c := &cli{logger: logger}

	root := &cobra.Command{
		Use:   "oxyscene",
		Short: "Render and inspect the oxy-scene demo scene",
		Long: `oxyscene renders the custom shader vars demo: a torus drawn through a shader node
whose vertex and fragment hooks are driven by a time var updated every frame.

Runs headless against the recording renderer unless --window is given, in which case
frames are drawn to the window through WebGPU.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.logger != nil {
				return nil
			}
			config := zap.NewProductionConfig()
			if c.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			c.logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&c.debugConfig, "debug-config", "", "YAML file with debug configs (shading.validate, shading.logScripts)")
	pf.BoolVar(&c.validate, "validate", false, "Set shading.validate")
	pf.BoolVar(&c.logScripts, "log-scripts", false, "Set shading.logScripts")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the render loop",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	rf := runCmd.Flags()
	rf.IntVar(&c.frames, "frames", 0, "Number of frames to render (0 = until interrupted or the window closes)")
	rf.Float64Var(&c.fps, "fps", 60, "Frame rate cap (0 = uncapped)")
	rf.BoolVar(&c.watch, "watch", false, "Reload --debug-config when the file changes")
	rf.BoolVar(&c.profile, "profile", false, "Log frame rate and memory once per second")
	rf.BoolVar(&c.windowed, "window", false, "Open a window and orbit the camera with the arrow keys and scroll wheel")
	rf.IntVar(&c.workers, "compile-workers", 4, "Workers used to assemble shader programs before the first frame")

	shadersCmd := &cobra.Command{
		Use:   "shaders",
		Short: "Assemble the demo's shader programs and print their WGSL",
		Args:  cobra.NoArgs,
		RunE:  c.shaders,
	}
	shadersCmd.Flags().StringVar(&c.program, "program", "", "Only print the program with this key")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective debug configs as YAML",
		Args:  cobra.NoArgs,
		RunE:  c.config,
	}

	root.AddCommand(runCmd, shadersCmd, configCmd)
	return root
}

// newScene builds the demo scene and applies the debug config file and flags, in that order.
func (c *cli) newScene(cmd *cobra.Command, r renderer.Renderer) (scene.Scene, error) {
	s, err := examples.NewCustomShaderVarsScene(r, scene.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	if c.debugConfig != "" {
		if err := debug.LoadYAML(s.Debug(), c.debugConfig); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("validate") {
		if err := s.SetDebugConfigs(debug.PathShadingValidate, c.validate); err != nil {
			return nil, err
		}
	}
	if flags.Changed("log-scripts") {
		if err := s.SetDebugConfigs(debug.PathShadingLogScripts, c.logScripts); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	if c.watch && c.debugConfig == "" {
		return errors.New("--watch requires --debug-config")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	options := []engine.EngineBuilderOption{
		engine.WithLogger(c.logger),
		engine.WithProfiling(c.profile),
		engine.WithRenderFrameLimit(c.fps),
		engine.WithCompileWorkers(c.workers),
	}

	rendererOptions := []renderer.RendererBuilderOption{renderer.WithLogger(c.logger)}
	var win window.Window
	if c.windowed {
		var err error
		win, err = window.NewWindow(window.WithTitle("oxy-scene: custom shader vars"))
		if err != nil {
			return err
		}
		backend, err := renderer.NewWGPUBackend(win.SurfaceDescriptor(),
			renderer.WithWGPULogger(c.logger.Named("wgpu")),
			renderer.WithSampleCount(renderer.MSAA4x),
		)
		if err != nil {
			_ = win.Close()
			return err
		}
		defer backend.Release()
		options = append(options, engine.WithSurface(win))
		rendererOptions = append(rendererOptions, renderer.WithBackend(backend), renderer.WithMSAA(renderer.MSAA4x))
	}

	s, err := c.newScene(cmd, renderer.NewRenderer(rendererOptions...))
	if err != nil {
		return err
	}
	eng := engine.NewEngine(append(options, engine.WithScene(0, s))...)

	if win != nil {
		eye, err := s.FindNode(examples.LookAtID)
		if err != nil {
			return err
		}
		orbit := camera.NewOrbit(camera.WithLookAt(examples.DefaultLookAt))
		window.NewOrbitControls(orbit, func(l camera.LookAt) error {
			return eye.Set("lookAt", l)
		}, c.logger).Attach(win)
	}

	watchDone := make(chan error, 1)
	watchCtx, cancelWatch := context.WithCancel(ctx)
	if c.watch {
		go func() { watchDone <- debug.Watch(watchCtx, s.Debug(), c.debugConfig, c.logger) }()
	} else {
		watchDone <- nil
	}
	defer func() {
		cancelWatch()
		if err := <-watchDone; err != nil {
			c.logger.Warn("debug config watch failed", zap.Error(err))
		}
	}()

	if err := eng.Precompile(); err != nil {
		return err
	}

	animator := examples.NewAnimator()
	if err := eng.Start(ctx, engine.StartConfig{IdleFunc: animator.Idle, Frames: c.frames}); err != nil {
		return err
	}

	c.logger.Info("render loop stopped",
		zap.Uint64("frames", s.Frame()),
		zap.Int("programs", len(s.Shader().Programs())),
		zap.Int("pipelines", len(s.Renderer().Pipelines())))
	fmt.Fprintf(cmd.OutOrStdout(), "rendered %d frames\n", s.Frame())
	return nil
}

func (c *cli) shaders(cmd *cobra.Command, args []string) error {
	s, err := c.newScene(cmd, renderer.NewRenderer(renderer.WithLogger(c.logger)))
	if err != nil {
		return err
	}
	if err := s.Compile(); err != nil {
		return err
	}

	programs := s.Shader().Programs()
	sort.Slice(programs, func(i, j int) bool { return programs[i].Key() < programs[j].Key() })

	out := cmd.OutOrStdout()
	printed := 0
	for _, p := range programs {
		if c.program != "" && p.Key() != c.program {
			continue
		}
		for _, stage := range []shader.Stage{shader.StageVertex, shader.StageFragment} {
			fmt.Fprintf(out, "// program %q, %s stage\n%s\n\n", p.Key(), stage, p.Source(stage))
		}
		printed++
	}
	if printed == 0 {
		return fmt.Errorf("no program with key %q", c.program)
	}
	return nil
}

func (c *cli) config(cmd *cobra.Command, args []string) error {
	s, err := c.newScene(cmd, renderer.NewRenderer())
	if err != nil {
		return err
	}
	data, err := debug.MarshalYAML(s.Debug())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
