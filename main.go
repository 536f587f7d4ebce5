// partials expands partial references in documents at build time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/phobologic/partials/internal/config"
	"github.com/phobologic/partials/internal/discover"
	"github.com/phobologic/partials/internal/graph"
	"github.com/phobologic/partials/internal/inject"
	"github.com/phobologic/partials/internal/loader"
	"github.com/phobologic/partials/internal/logging"
	"github.com/phobologic/partials/internal/model"
	"github.com/phobologic/partials/internal/pipeline"
	"github.com/phobologic/partials/internal/toon"
	"github.com/phobologic/partials/internal/watch"
)

var version = "dev"

const watchDebounce = 100 * time.Millisecond

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	var err error
	if len(args) > 0 && args[0] == "init" {
		err = runInit(args[1:], os.Stdout, os.Stderr)
	} else {
		err = run(ctx, args, os.Stdout, os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("partials", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		start       string
		end         string
		removeTags  bool
		quiet       bool
		prefix      string
		ignoreError bool
		configPath  string
		out         string
		exts        string
		exclude     string
		report      bool
		watchMode   bool
		verbose     bool
		showVersion bool
	)

	fs.StringVar(&start, "start", "", "start tag template containing {{path}}")
	fs.StringVar(&end, "end", "", "end tag template")
	fs.BoolVar(&removeTags, "remove-tags", false, "drop start and end tags from the output")
	fs.BoolVar(&quiet, "q", false, "suppress the per-document summary")
	fs.BoolVar(&quiet, "quiet", false, "suppress the per-document summary")
	fs.StringVar(&prefix, "prefix", "", "prefix prepended to every referenced path")
	fs.BoolVar(&ignoreError, "ignore-error", false, "warn about missing partials instead of failing")
	fs.StringVar(&configPath, "c", "", "config file (default <root>/"+config.FileName+" if present)")
	fs.StringVar(&configPath, "config", "", "config file (default <root>/"+config.FileName+" if present)")
	fs.StringVar(&out, "o", "", "output directory")
	fs.StringVar(&out, "out", "", "output directory")
	fs.StringVar(&exts, "ext", "", "comma-separated document extensions")
	fs.StringVar(&exclude, "exclude", "", "comma-separated gitignore-style patterns of files that are not documents")
	fs.BoolVar(&report, "report", false, "print a TOON report of the run")
	fs.BoolVar(&watchMode, "watch", false, "rebuild affected documents on change until interrupted")
	fs.BoolVar(&verbose, "v", false, "verbose logging")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "partials %s\n", version)
		return nil
	}

	target := "."
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}

	target, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("path: %w", err)
	}

	root := target
	if !info.IsDir() {
		root = filepath.Dir(target)
	}

	cfg, err := loadConfig(configPath, root)
	if err != nil {
		return err
	}

	// Flags override the config file only when given explicitly.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "start":
			cfg.Start = start
		case "end":
			cfg.End = end
		case "remove-tags":
			cfg.RemoveTags = removeTags
		case "q", "quiet":
			cfg.Quiet = quiet
		case "prefix":
			cfg.Prefix = prefix
		case "ignore-error":
			cfg.IgnoreError = ignoreError
		case "o", "out":
			cfg.Out = out
		case "ext":
			cfg.Extensions = splitList(exts)
		case "exclude":
			cfg.Exclude = splitList(exclude)
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if cfg.Out != "" && !filepath.IsAbs(cfg.Out) {
		if cfg.Out, err = filepath.Abs(cfg.Out); err != nil {
			return fmt.Errorf("resolving output directory: %w", err)
		}
	}
	if info.IsDir() && cfg.Out == "" {
		return errors.New("an output directory (-o) is required when expanding a directory")
	}
	if cfg.Out == "" && (report || watchMode) {
		return errors.New("-report and -watch require an output directory (-o)")
	}
	if cfg.Out == root {
		return errors.New("output directory must differ from the source directory")
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(stderr, level)

	engine, err := inject.New(cfg.Options, loader.New(os.DirFS("/")), logger)
	if err != nil {
		return err
	}

	b := &builder{
		root:   root,
		cfg:    cfg,
		host:   pipeline.New(engine, logger),
		edges:  make(map[string][]model.Dependency),
		failed: make(map[string]struct{}),
		logger: logger,
	}

	if !info.IsDir() {
		b.single = target
	}

	outcomes, err := b.buildAll()
	if err != nil {
		return err
	}

	if cfg.Out == "" {
		// Single document to stdout.
		o := outcomes[0]
		if o.Err != nil {
			return o.Err
		}
		_, _ = stdout.Write(o.File.Contents)
		return nil
	}

	if report {
		_, _ = fmt.Fprintln(stdout, toon.Encode(pipeline.Summarize(root, outcomes)))
	}

	if watchMode {
		logger.Info("watching for changes", "root", root, "out", cfg.Out)
		w := watch.New(root, []string{cfg.Out}, watchDebounce, logger)
		return w.Run(ctx, func(changed []string) {
			if _, err := b.rebuild(changed); err != nil {
				logger.Error("rebuild failed", "error", err)
			}
		})
	}

	if n := pipeline.Failed(outcomes); n > 0 {
		return fmt.Errorf("%d of %d documents failed", n, len(outcomes))
	}
	return nil
}

// builder expands the documents of one root and remembers the include
// edges of each document for watch-mode rebuilds. Documents that failed
// are rebuilt on every change until they succeed.
type builder struct {
	root   string
	single string // Absolute path when expanding a single file
	cfg    config.Config
	host   *pipeline.Host
	edges  map[string][]model.Dependency
	failed map[string]struct{}
	logger *slog.Logger
}

func (b *builder) documents() ([]string, error) {
	if b.single != "" {
		rel, err := filepath.Rel(b.root, b.single)
		if err != nil {
			return nil, err
		}
		return []string{rel}, nil
	}

	var skip []string
	if b.cfg.Out != "" {
		skip = append(skip, b.cfg.Out)
	}
	docs, err := discover.Documents(b.root, discover.Options{
		Extensions: b.cfg.Extensions,
		Exclude:    b.cfg.Exclude,
		SkipDirs:   skip,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering documents: %w", err)
	}
	return docs, nil
}

func (b *builder) buildAll() ([]model.Outcome, error) {
	docs, err := b.documents()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents found")
	}
	return b.build(docs)
}

// rebuild expands the documents affected by changed absolute paths.
func (b *builder) rebuild(changed []string) ([]model.Outcome, error) {
	docs, err := b.documents()
	if err != nil {
		return nil, err
	}

	affected := make(map[string]struct{})
	for _, p := range graph.Affected(b.dependencies(), changed) {
		affected[p] = struct{}{}
	}

	var selected []string
	for _, rel := range docs {
		path := filepath.Join(b.root, rel)
		_, hit := affected[path]
		_, failed := b.failed[path]
		if hit || failed {
			selected = append(selected, rel)
		}
	}
	if len(selected) == 0 {
		return nil, nil
	}

	b.logger.Info("rebuilding", "documents", len(selected), "changed", len(changed))
	return b.build(selected)
}

func (b *builder) build(docs []string) ([]model.Outcome, error) {
	files, err := pipeline.ReadFiles(b.root, docs)
	if err != nil {
		return nil, err
	}

	outcomes := b.host.Run(files)
	for _, o := range outcomes {
		b.edges[o.File.Path] = o.Edges
		if o.Err != nil {
			b.failed[o.File.Path] = struct{}{}
		} else {
			delete(b.failed, o.File.Path)
		}
	}

	if b.cfg.Out != "" {
		if err := pipeline.WriteOutcomes(b.root, b.cfg.Out, outcomes); err != nil {
			return nil, err
		}
	}
	return outcomes, nil
}

func (b *builder) dependencies() []model.Dependency {
	var all []model.Dependency
	for _, e := range b.edges {
		all = append(all, e...)
	}
	return graph.Build(all)
}

func loadConfig(path, root string) (config.Config, error) {
	if path == "" {
		candidate := filepath.Join(root, config.FileName)
		if _, err := os.Stat(candidate); err != nil {
			return config.Default(), nil
		}
		path = candidate
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Out != "" && !filepath.IsAbs(cfg.Out) {
		cfg.Out = filepath.Join(filepath.Dir(path), cfg.Out)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-start": true, "--start": true,
	"-end": true, "--end": true,
	"-prefix": true, "--prefix": true,
	"-c": true, "--c": true,
	"-config": true, "--config": true,
	"-o": true, "--o": true,
	"-out": true, "--out": true,
	"-ext": true, "--ext": true,
	"-exclude": true, "--exclude": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
