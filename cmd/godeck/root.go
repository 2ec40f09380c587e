package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deckwright/godeck"
)

type rootFlags struct {
	configPath string
	template   string
	verbosity  int
}

// runContext is the resolved per-invocation environment: config file,
// logger at the requested verbosity, and the effective template path
// ("" means the built-in template).
type runContext struct {
	cfg      *cliConfig
	log      *zap.Logger
	template string
}

// newContext loads the config and builds the logger. minVerbosity lets
// report-style commands (profile, resolve, selftest) floor the level at
// info, since their output IS the log.
func (f *rootFlags) newContext(minVerbosity int) (*runContext, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	v := f.verbosity
	if v < minVerbosity {
		v = minVerbosity
	}
	log, err := godeck.NewLogger(v)
	if err != nil {
		return nil, err
	}
	template := f.template
	if template == "" {
		template = cfg.Template
	}
	return &runContext{cfg: cfg, log: log, template: template}, nil
}

// openTemplate opens the effective template, falling back to the
// built-in one when none is configured.
func (c *runContext) openTemplate() (*godeck.Template, error) {
	if c.template != "" {
		return godeck.OpenTemplate(c.template)
	}
	return godeck.DefaultTemplate()
}

func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "godeck",
		Short: "Build PowerPoint decks from declarative JSON specs",
		Long: `godeck turns a JSON deck spec into a .pptx built on a template's own
masters and layouts: layout resolution by name, alias, token, or
example slide; bullet trees with true numbering; shrink-to-fit text;
and a round-trip self-test.`,
		Version:       godeck.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.godeck/config.yaml)")
	pf.StringVarP(&flags.template, "template", "t", "", ".pptx template providing masters/layouts")
	pf.CountVarP(&flags.verbosity, "verbose", "v", "increase verbosity (-v, -vv)")
	root.CompletionOptions.HiddenDefaultCmd = true

	root.AddCommand(
		newBuildCmd(flags),
		newProfileCmd(flags),
		newResolveCmd(flags),
		newGuideCmd(flags),
		newCleanCmd(flags),
		newSelftestCmd(flags),
		newInspectCmd(flags),
		newPreviewCmd(flags),
	)
	return root
}

// readSpecArg returns the spec source: the positional argument as-is
// (path or inline JSON), or all of stdin when it is "-" or absent.
func readSpecArg(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if len(data) == 0 {
			return "", fmt.Errorf("no spec given: pass a file, inline JSON, or pipe to stdin")
		}
		return string(data), nil
	}
	return args[0], nil
}

func newBuildCmd(flags *rootFlags) *cobra.Command {
	var output string
	var lenient, strict bool

	cmd := &cobra.Command{
		Use:   "build [spec.json]",
		Short: "Build a .pptx deck from a spec file, inline JSON, or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := flags.newContext(0)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.log.Sync() }()

			raw, err := readSpecArg(args)
			if err != nil {
				return err
			}
			spec, err := godeck.LoadDeckSpec(raw, lenient, ctx.log)
			if err != nil {
				return err
			}
			if err := spec.Validate(); err != nil {
				return err
			}
			return godeck.BuildDeck(spec, output, &godeck.BuildOptions{
				TemplatePath: ctx.template,
				Strict:       strict,
				Logger:       ctx.log,
				FontDirs:     ctx.cfg.FontDirs,
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .pptx path (required)")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "auto-clean near-JSON input before parsing")
	cmd.Flags().BoolVar(&strict, "strict", false, "make layout resolution misses hard errors")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newProfileCmd(flags *rootFlags) *cobra.Command {
	var jsonOut string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the template's layout inventory and authoring hints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := flags.newContext(1)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.log.Sync() }()

			t, err := ctx.openTemplate()
			if err != nil {
				return err
			}
			return godeck.DumpLayouts(t, jsonOut, ctx.log)
		},
	}
	cmd.Flags().StringVar(&jsonOut, "json", "", "also write the full profile as JSON to this path")
	return cmd
}

func newResolveCmd(flags *rootFlags) *cobra.Command {
	var lenient, strict bool

	cmd := &cobra.Command{
		Use:   "resolve [spec.json]",
		Short: "Show which layout each slide of a spec would resolve to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := flags.newContext(1)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.log.Sync() }()

			raw, err := readSpecArg(args)
			if err != nil {
				return err
			}
			spec, err := godeck.LoadDeckSpec(raw, lenient, ctx.log)
			if err != nil {
				return err
			}

			templatePath := ctx.template
			if templatePath == "" && spec.Meta != nil {
				templatePath = spec.Meta.TemplatePath
			}
			var t *godeck.Template
			if templatePath != "" {
				t, err = godeck.OpenTemplate(templatePath)
			} else {
				t, err = godeck.DefaultTemplate()
			}
			if err != nil {
				return err
			}

			for i, slideSpec := range spec.Slides {
				layout, _, err := godeck.ResolveLayout(t, slideSpec, spec.Meta, strict, ctx.log)
				if err != nil {
					return fmt.Errorf("slide %d: %w", i+1, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "slide %d → [%s] %s\n", i+1, layout.Token(), layout.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&lenient, "lenient", false, "auto-clean near-JSON input before parsing")
	cmd.Flags().BoolVar(&strict, "strict", false, "make layout resolution misses hard errors")
	return cmd
}

func newGuideCmd(flags *rootFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Generate an authoring prompt describing the spec format and this template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := flags.newContext(0)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.log.Sync() }()

			text, err := godeck.GenerateAuthoringGuide(ctx.template)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
				return fmt.Errorf("write guide: %w", err)
			}
			ctx.log.Sugar().Infof("Wrote authoring prompt: %s", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the prompt to this path instead of stdout")
	return cmd
}

func newCleanCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "clean [input.json]",
		Short: "Run the lenient JSON cleanup and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			switch {
			case len(args) == 0 || args[0] == "-":
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = string(data)
			default:
				if data, err := os.ReadFile(args[0]); err == nil {
					raw = string(data)
				} else {
					raw = args[0]
				}
			}
			cleaned := godeck.CleanLenient(raw)
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cleaned)
				return nil
			}
			return os.WriteFile(output, []byte(cleaned), 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write cleaned JSON to this path instead of stdout")
	return cmd
}

func newSelftestCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Build a fixture deck, read it back, and verify the content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := flags.newContext(1)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.log.Sync() }()

			return godeck.RunSelfTest(output, ctx.template, ctx.log)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "keep the test deck at this path")
	return cmd
}

func newInspectCmd(flags *rootFlags) *cobra.Command {
	var slideNum, identify int

	cmd := &cobra.Command{
		Use:   "inspect <deck.pptx>",
		Short: "List a deck's slides, or dump one slide's shapes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := godeck.OpenTemplate(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if identify > 0 {
				id, err := godeck.IdentifySlideLayout(t, identify)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Slide %d uses layout: %s  (id [%s])\n", id.SlideNumber, id.LayoutName, id.LayoutID)
				return nil
			}
			if slideNum > 0 {
				text, err := t.DescribeSlide(slideNum)
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
				return nil
			}

			rows, err := godeck.ListSlides(t)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Slides:")
			fmt.Fprintln(out, "-------")
			for _, row := range rows {
				fmt.Fprintln(out, row)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&slideNum, "slide", 0, "dump the shapes of this slide (1-based)")
	cmd.Flags().IntVar(&identify, "identify", 0, "print only the layout of this slide (1-based)")
	return cmd
}

func newPreviewCmd(flags *rootFlags) *cobra.Command {
	var output string
	var width, slideNum int
	var lenient bool

	cmd := &cobra.Command{
		Use:   "preview [spec.json]",
		Short: "Render a spec's slides to PNG thumbnails without saving a deck",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := flags.newContext(0)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.log.Sync() }()

			raw, err := readSpecArg(args)
			if err != nil {
				return err
			}
			spec, err := godeck.LoadDeckSpec(raw, lenient, ctx.log)
			if err != nil {
				return err
			}

			fonts := godeck.NewFontCache(ctx.cfg.FontDirs...)
			t, slides, _, err := godeck.BuildSlides(spec, &godeck.BuildOptions{
				TemplatePath: ctx.template,
				Logger:       ctx.log,
				FontCache:    fonts,
			})
			if err != nil {
				return err
			}

			opts := godeck.DefaultPreviewOptions()
			opts.Width = width
			opts.FontCache = fonts

			if slideNum > 0 {
				if slideNum > len(slides) {
					return fmt.Errorf("slide %d out of range (1..%d)", slideNum, len(slides))
				}
				return godeck.SaveSlidePreview(t, slides[slideNum-1], output, opts)
			}
			if !strings.Contains(output, "%d") {
				if len(slides) == 1 {
					return godeck.SaveSlidePreview(t, slides[0], output, opts)
				}
				return fmt.Errorf("output pattern must contain %%d when rendering %d slides", len(slides))
			}
			return godeck.SaveSlidePreviews(t, slides, output, opts)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output image path, with %d for the slide number (required)")
	cmd.Flags().IntVar(&width, "width", 960, "image width in pixels")
	cmd.Flags().IntVar(&slideNum, "slide", 0, "render only this slide (1-based)")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "auto-clean near-JSON input before parsing")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
