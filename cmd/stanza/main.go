package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"stanza/internal/builder"
	"stanza/internal/config"
	"stanza/internal/scaffold"
	"stanza/internal/server"
)

const (
	contentDir  = "content"
	templateDir = "templates"
	staticDir   = "static"
)

var CLI struct {
	Config  string `short:"c" help:"Site configuration file path" default:"site.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory for the generated site" default:"public"`
		Drafts bool   `short:"D" help:"Include draft documents (preview build)"`
		Clean  bool   `help:"Empty the output directory before building" default:"true" negatable:""`
		Unsafe bool   `help:"Disable HTML sanitization. Allows all raw HTML"`
	} `cmd:"" help:"Build the site from the content directory"`

	Serve struct {
		Port   int    `short:"p" default:"1313" help:"Port for the local preview server"`
		Output string `short:"o" help:"Output directory for the generated site" default:"public"`
		Unsafe bool   `help:"Disable HTML sanitization. Allows all raw HTML"`
	} `cmd:"" help:"Run a local preview server with auto-rebuild and live reload"`

	New struct {
		Type string `arg:"" help:"'site' or a content type such as 'post'"`
		Name string `arg:"" help:"Site directory name, or the new content's title"`
	} `cmd:"" help:"Scaffold a new site or a new content file"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("stanza"),
		kong.Description("a small static site generator for personal blogs"))

	// A .env next to site.yaml can override STANZA_* settings.
	_ = godotenv.Load()

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if err := run(ctx.Command()); err != nil {
		slog.Error("Operation failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(command string) error {
	switch command {
	case "build":
		opts := builder.BuildOptions{
			CleanDestination: CLI.Build.Clean,
			IncludeDrafts:    CLI.Build.Drafts,
			Unsafe:           CLI.Build.Unsafe,
		}
		return runBuild(CLI.Build.Output, opts)

	case "serve":
		opts := builder.BuildOptions{Unsafe: CLI.Serve.Unsafe}
		watchPaths := []string{contentDir, templateDir, staticDir, CLI.Config}
		buildFunc := func(buildOpts builder.BuildOptions) error {
			return runBuild(CLI.Serve.Output, buildOpts)
		}
		return server.Run(CLI.Serve.Port, CLI.Serve.Output, watchPaths, buildFunc, opts)

	case "new <type> <name>":
		if CLI.New.Type == "site" {
			return scaffold.CreateNewSite(CLI.New.Name)
		}
		return scaffold.CreateNewContent(CLI.New.Type, CLI.New.Name, CLI.Config)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runBuild(outputDir string, opts builder.BuildOptions) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	tmpl, err := builder.LoadTemplates(templateDir, cfg.Theme)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	result, err := builder.BuildSite(outputDir, contentDir, staticDir, cfg, tmpl, opts)
	if err != nil {
		return fmt.Errorf("site generation failed: %w", err)
	}

	slog.Info("Build complete",
		slog.Int("pages", result.Pages),
		slog.Int("skipped", len(result.Skipped)))
	return nil
}
