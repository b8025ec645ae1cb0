package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"cv-creator/internal/app"
	"cv-creator/internal/autosave"
	"cv-creator/internal/config"
	"cv-creator/internal/domain"
	"cv-creator/internal/mcpserver"
	"cv-creator/internal/model"
	"cv-creator/internal/usecase"
	"cv-creator/internal/versions"
	"cv-creator/internal/watch"

	"github.com/urfave/cli/v3"
)

// env is the state every subcommand starts from.
type env struct {
	cfg     *config.Config
	proc    *usecase.Processor
	backend app.Backend
	store   *versions.Store
	sc      domain.SessionContext
}

func setup(ctx context.Context, cmd *cli.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	sc := cfg.SessionDefaults()
	if v := cmd.String("template"); v != "" {
		if sc.Template, err = domain.ParseTemplate(v); err != nil {
			return nil, err
		}
	}
	if v := cmd.String("color"); v != "" {
		if sc.Color, err = domain.ParseColor(v); err != nil {
			return nil, err
		}
	}
	if v := cmd.String("locale"); v != "" {
		sc.Locale = v
	}

	backend, err := app.OpenBackend(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &env{
		cfg:     cfg,
		proc:    app.NewProcessor(cfg),
		backend: backend,
		store:   versions.New(backend, cmd.String("namespace")),
		sc:      sc,
	}, nil
}

func (e *env) Close() { _ = e.backend.Close() }

// action opens the environment around a subcommand.
func action(f func(ctx context.Context, cmd *cli.Command, e *env) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		e, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return f(ctx, cmd, e)
	}
}

func readProfile(e *env, path string) (model.Profile, error) {
	if path == "" {
		return model.Profile{}, fmt.Errorf("a profile JSON file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Profile{}, err
	}
	return e.proc.Import(data)
}

func writeArtifact(dir string, a usecase.Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, a.Name)
	return path, os.WriteFile(path, a.Data, 0o644)
}

func render(ctx context.Context, cmd *cli.Command, e *env) error {
	prof, err := readProfile(e, cmd.Args().First())
	if err != nil {
		return err
	}
	l := e.proc.Labels(ctx, e.sc.Locale)
	a, err := e.proc.Export(ctx, prof, e.sc, l, usecase.FormatMarkdown)
	if err != nil {
		return err
	}
	p := usecase.ComputeProgress(prof)
	fmt.Fprintf(os.Stderr, "progress: %d%% (%d/%d)\n", p.Percent, p.Filled, p.Total)
	_, err = os.Stdout.Write(a.Data)
	return err
}

func export(ctx context.Context, cmd *cli.Command, e *env) error {
	prof, err := readProfile(e, cmd.Args().First())
	if err != nil {
		return err
	}
	l := e.proc.Labels(ctx, e.sc.Locale)
	for _, name := range cmd.StringSlice("format") {
		f, err := usecase.ParseFormat(name)
		if err != nil {
			return err
		}
		a, err := e.proc.Export(ctx, prof, e.sc, l, f)
		if err != nil {
			return err
		}
		path, err := writeArtifact(outDir(cmd, e), a)
		if err != nil {
			return err
		}
		fmt.Println(l.Tf("notice.exported", path))
	}
	return nil
}

func outDir(cmd *cli.Command, e *env) string {
	if v := cmd.String("out"); v != "" {
		return v
	}
	return e.cfg.OutputDir
}

func listVersions(ctx context.Context, cmd *cli.Command, e *env) error {
	names, err := e.store.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func saveVersion(ctx context.Context, cmd *cli.Command, e *env) error {
	name := cmd.Args().Get(0)
	prof, err := readProfile(e, cmd.Args().Get(1))
	if err != nil {
		return err
	}
	snap, err := e.store.Save(ctx, name, prof, e.sc.Template, e.sc.Color)
	if err != nil {
		return err
	}
	fmt.Println(e.proc.Labels(ctx, e.sc.Locale).Tf("notice.saved", strings.TrimSpace(name)), snap.SavedAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// stdinConfirm asks on the terminal.
func stdinConfirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

func loadVersion(ctx context.Context, cmd *cli.Command, e *env) error {
	s := usecase.NewSession(cmd.String("namespace"), e.proc, e.store, usecase.NewNoticeBuffer(nil), e.sc)
	if err := s.Restore(ctx); err != nil {
		return err
	}
	confirm := usecase.Confirm(stdinConfirm)
	if cmd.Bool("yes") {
		confirm = usecase.Always
	}
	loaded, err := s.LoadVersion(ctx, cmd.Args().First(), confirm)
	if err != nil {
		return err
	}
	if !loaded {
		return nil
	}
	// the loaded version becomes the working copy
	if err := s.AutosaveNow(ctx); err != nil {
		return err
	}
	data, err := model.MarshalProfile(s.Profile())
	if err != nil {
		return err
	}
	if out := cmd.String("out"); out != "" {
		return os.WriteFile(out, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func deleteVersion(ctx context.Context, cmd *cli.Command, e *env) error {
	name := cmd.Args().First()
	if err := e.store.Delete(ctx, name); err != nil {
		return err
	}
	fmt.Println(e.proc.Labels(ctx, e.sc.Locale).Tf("notice.deleted", strings.TrimSpace(name)))
	return nil
}

// watchFile regenerates the export whenever the JSON file settles, and
// keeps the autosave slot of the namespace up to date.
func watchFile(ctx context.Context, cmd *cli.Command, e *env) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("a profile JSON file is required")
	}
	f, err := usecase.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notices := usecase.NewNoticeBuffer(slog.Default())
	s := usecase.NewSession(cmd.String("namespace"), e.proc, e.store, notices, e.sc)
	dir := outDir(cmd, e)

	regenerate := func(ctx context.Context) {
		// notices were already logged
		defer notices.Drain()
		if err := s.AutosaveNow(ctx); err != nil {
			return
		}
		a, err := s.Export(ctx, f)
		if err != nil {
			return
		}
		if out, err := writeArtifact(dir, a); err != nil {
			slog.Error("watch: write failed", "path", out, "error", err)
		}
	}
	sched := autosave.New(e.cfg.AutosaveDebounce, e.cfg.AutosaveInterval, regenerate, func(ctx context.Context) {
		_ = s.AutosaveNow(ctx)
	})
	s.OnEdit(sched.Edit)
	sched.Start(ctx)
	defer sched.Stop()

	load := func(ctx context.Context, data []byte) {
		prof, err := e.proc.Import(data)
		if err != nil {
			slog.Warn("watch: ignoring malformed file", "path", path, "error", err)
			return
		}
		_ = s.Edit(ctx, func(f *model.FormState) error {
			f.Populate(prof)
			return nil
		})
	}
	if data, err := os.ReadFile(path); err == nil {
		load(ctx, data)
	}
	return watch.File(ctx, path, slog.Default(), load)
}

func serveMCP(ctx context.Context, cmd *cli.Command, e *env) error {
	return mcpserver.New(e.proc, e.store, e.sc, outDir(cmd, e)).ServeStdio()
}

func outFlag() cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output directory (default OUTPUT_DIR)"}
}

func main() {
	cmd := &cli.Command{
		Name:  "cvgen",
		Usage: "Render CV JSON files to PDF, Markdown, HTML and JSON, and manage saved versions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "namespace", Aliases: []string{"n"}, Value: "default", Usage: "Version store namespace", Sources: cli.EnvVars("CV_NAMESPACE")},
			&cli.StringFlag{Name: "locale", Aliases: []string{"l"}, Usage: "Output language (default DEFAULT_LOCALE)"},
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "classic, modern or minimal"},
			&cli.StringFlag{Name: "color", Usage: "blue, green, purple, red, orange or teal"},
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Print a CV as Markdown",
				ArgsUsage: "<profile.json>",
				Action:    action(render),
			},
			{
				Name:      "export",
				Usage:     "Write a CV in one or more formats",
				ArgsUsage: "<profile.json>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "format", Aliases: []string{"f"}, Value: []string{"pdf"}, Usage: "pdf, markdown, html or json"},
					outFlag(),
				},
				Action: action(export),
			},
			{
				Name:  "versions",
				Usage: "Manage saved versions",
				Commands: []*cli.Command{
					{Name: "list", Usage: "List saved versions", Action: action(listVersions)},
					{Name: "save", Usage: "Save a CV as a version", ArgsUsage: "<name> <profile.json>", Action: action(saveVersion)},
					{
						Name:      "load",
						Usage:     "Load a version into the working copy and print it",
						ArgsUsage: "<name>",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation"},
							&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the JSON to a file"},
						},
						Action: action(loadVersion),
					},
					{Name: "delete", Usage: "Delete a version", ArgsUsage: "<name>", Action: action(deleteVersion)},
				},
			},
			{
				Name:      "watch",
				Usage:     "Re-export a CV whenever its JSON file changes",
				ArgsUsage: "<profile.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "html", Usage: "pdf, markdown, html or json"},
					outFlag(),
				},
				Action: action(watchFile),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the CV tools over MCP stdio",
				Flags:  []cli.Flag{outFlag()},
				Action: action(serveMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
