// Package query provides the engine that runs one deadwood analysis:
// discovery, parallel parsing and extraction, graph build, reachability and
// dependency tracking.
package query

import (
	"context"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"deadwood/internal/config"
	"deadwood/internal/deadcode"
	"deadwood/internal/errors"
	"deadwood/internal/logging"
	"deadwood/internal/modules"
	"deadwood/internal/paths"
	"deadwood/internal/symbols"
)

// Engine is the central analysis coordinator.
type Engine struct {
	projectDir string
	config     *config.Config
	parser     modules.DeclarationParser
	logger     *logging.Logger
}

// NewEngine creates a new engine for the project at projectDir. A nil parser
// selects the tree-sitter parser.
func NewEngine(projectDir string, cfg *config.Config, parser modules.DeclarationParser, logger *logging.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	abs, err := paths.Absolute(projectDir)
	if err != nil {
		return nil, errors.New(errors.RootNotFound, "cannot resolve project directory", err)
	}

	if parser == nil {
		parser = symbols.NewParser(symbols.Options{
			Timeout: time.Duration(cfg.Parser.TimeoutMs) * time.Millisecond,
		})
	}

	return &Engine{
		projectDir: abs,
		config:     cfg,
		parser:     parser,
		logger:     logger,
	}, nil
}

// ProjectDir returns the absolute project directory.
func (e *Engine) ProjectDir() string {
	return e.projectDir
}

// SourceRoot returns the absolute directory that is scanned.
func (e *Engine) SourceRoot() string {
	root := e.config.Root
	if root == "" {
		root = "."
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.FromSlash(e.projectDir), root)
	}
	return filepath.ToSlash(filepath.Clean(root))
}

func (e *Engine) projectPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return paths.JoinRepoPath(filepath.FromSlash(e.projectDir), p)
}

func (e *Engine) workers() int {
	if e.config.Parser.Workers > 0 {
		return e.config.Parser.Workers
	}
	return runtime.NumCPU()
}

// inputs are the configuration files read before any source file.
type inputs struct {
	aliases  *modules.AliasTable
	manifest *modules.Manifest
	keep     *modules.KeepFile
}

func (e *Engine) loadInputs() (*inputs, error) {
	aliases, err := modules.LoadAliasTable(e.projectDir, e.config.Aliases)
	if err != nil {
		return nil, err
	}

	manifest, err := modules.LoadManifest(e.projectPath(e.config.Manifest.Path), modules.ManifestOptions{
		IncludeDev:      e.config.Manifest.IncludeDev,
		IncludePeer:     e.config.Manifest.IncludePeer,
		IncludeOptional: e.config.Manifest.IncludeOptional,
	})
	if err != nil {
		return nil, err
	}

	keep := &modules.KeepFile{Version: 1}
	if e.config.KeepFile != "" {
		keep, err = modules.LoadKeepFile(e.projectPath(e.config.KeepFile))
		if err != nil {
			return nil, err
		}
	}

	e.logger.Debug("Inputs loaded", map[string]interface{}{
		"aliases":       aliases.Len(),
		"baseUrl":       aliases.BaseURL(),
		"manifestFound": manifest.Found,
		"dependencies":  len(manifest.Dependencies),
		"keepRules":     len(keep.Keep),
	})
	return &inputs{aliases: aliases, manifest: manifest, keep: keep}, nil
}

// Run performs one analysis. Configuration and root errors are returned
// before any file is read; per-file failures become diagnostics.
// Cancellation is observed until every file has been extracted; after that
// the run completes.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	started := time.Now()
	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: started.UTC().Format(time.RFC3339),
	}

	in, err := e.loadInputs()
	if err != nil {
		return nil, err
	}

	phase := time.Now()
	root := e.SourceRoot()
	if !paths.IsWithinRepo(root, e.projectDir) {
		e.logger.Warn("Source root is outside the project directory; report paths will start with ..", map[string]interface{}{
			"root":    root,
			"project": e.projectDir,
		})
	}
	ids, err := modules.Discover(ctx, root, modules.DiscoverOptions{
		Extensions: e.config.Extensions,
		Ignore:     e.config.Ignore,
	}, e.logger)
	if err != nil {
		return nil, err
	}
	report.Timings.DiscoverMs = time.Since(phase).Milliseconds()

	phase = time.Now()
	records, failed, err := e.extractAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	report.Timings.ParseMs = time.Since(phase).Milliseconds()

	// Barrier passed: everything below runs to completion.
	phase = time.Now()
	resolver, err := modules.NewResolver(modules.NewFileSet(ids), in.aliases, modules.ResolverOptions{
		Root:       root,
		RootMarker: e.config.RootMarker,
		Suffixes:   e.config.Resolve.Suffixes,
	})
	if err != nil {
		return nil, errors.New(errors.InternalError, "cannot create resolver", err)
	}
	builder := modules.NewBuilder(resolver, e.projectDir, e.logger)
	graph := builder.Build(records, failed)
	report.Timings.BuildMs = time.Since(phase).Milliseconds()

	phase = time.Now()
	analyzer := deadcode.NewAnalyzer(graph, deadcode.Options{
		Entrypoints:     e.config.Entrypoints,
		Exclude:         e.config.Exclude,
		Keep:            in.keep,
		IgnoreTestUsage: e.config.IgnoreTestUsage,
	}, e.logger)
	result := analyzer.Analyze()

	deps := deadcode.TrackDependencies(graph, in.manifest, deadcode.DepsOptions{
		ImplyTypes:      e.config.Manifest.ImplyTypes,
		IgnoreTestUsage: e.config.IgnoreTestUsage,
	})
	report.Timings.AnalyzeMs = time.Since(phase).Milliseconds()

	report.Root = paths.Relative(e.projectDir, root)
	report.DeadExports = result.DeadExports
	report.Summary = result.Summary
	report.Dependencies = deps
	report.ManifestFound = in.manifest.Found
	report.Diagnostics = graph.Diagnostics()
	report.Files = len(ids)
	report.Timings.TotalMs = time.Since(started).Milliseconds()

	e.logger.Info("Analysis completed", map[string]interface{}{
		"runId":       report.RunID,
		"files":       report.Files,
		"deadExports": len(report.DeadExports),
		"unusedDeps":  len(deps.Unused),
		"diagnostics": len(report.Diagnostics),
		"durationMs":  report.Timings.TotalMs,
	})
	return report, nil
}

// extractAll parses and extracts every file on a bounded worker pool. Each
// worker writes only its own slot; g.Wait is the barrier. A fatal per-file
// error stops the pool and is returned as is.
func (e *Engine) extractAll(ctx context.Context, ids []modules.ModuleID) ([]*modules.FileRecord, []modules.FailedFile, error) {
	records := make([]*modules.FileRecord, len(ids))
	errs := make([]error, len(ids))
	extractor := modules.NewExtractor(e.config.Resolve.IgnoreExtensions)

	workers := e.workers()
	if workers > len(ids) && len(ids) > 0 {
		workers = len(ids)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i], errs[i] = e.extractFile(gctx, extractor, id)
			if errors.IsFatal(errs[i]) {
				return errs[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil || ctx.Err() != nil {
		if ctx.Err() == nil {
			return nil, nil, err
		}
		extracted := 0
		for i := range ids {
			if records[i] != nil || errs[i] != nil {
				extracted++
			}
		}
		return nil, nil, errors.New(errors.Canceled, "analysis interrupted before the module graph was built", ctx.Err()).
			WithDetails(map[string]int{"files": len(ids), "extracted": extracted})
	}

	var (
		kept   []*modules.FileRecord
		failed []modules.FailedFile
	)
	for i, id := range ids {
		if errs[i] != nil {
			e.logger.Warn("Skipping file", map[string]interface{}{
				"file":  paths.Relative(e.projectDir, string(id)),
				"error": errs[i].Error(),
			})
			failed = append(failed, modules.FailedFile{ID: id, Err: errs[i]})
			continue
		}
		kept = append(kept, records[i])
	}

	e.logger.Debug("Extraction completed", map[string]interface{}{
		"files":   len(ids),
		"failed":  len(failed),
		"workers": workers,
	})
	return kept, failed, nil
}

func (e *Engine) extractFile(ctx context.Context, extractor *modules.Extractor, id modules.ModuleID) (*modules.FileRecord, error) {
	source, err := modules.ReadSource(string(id), e.config.Parser.MaxFileSizeBytes)
	if err != nil {
		return nil, err
	}
	decls, err := e.parser.Parse(ctx, string(id), source)
	if err != nil {
		if errors.GetCode(err) == "" {
			return nil, errors.New(errors.ParseFailed, "parse failed", err)
		}
		return nil, err
	}
	return extractor.Extract(id, decls)
}
