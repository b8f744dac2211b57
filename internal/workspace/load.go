package workspace

import (
	"context"
	"fmt"
	"time"

	"go.lsp.dev/uri"
	"golang.org/x/sync/errgroup"

	"luasema/internal/config"
	"luasema/internal/source"
	"luasema/internal/trace"
)

// LoadResult summarises a LoadDir run.
type LoadResult struct {
	Files     []string // absolute paths, in commit order
	Committed int
	Failed    map[string]error
}

// LoadDir analyzes every workspace file of cfg in parallel (at most
// cfg.Workers() at a time) and commits the results in two passes: the
// structural facts of every file first, in path order, then the deferred
// member attachments of every file. A file can therefore attach members to
// types declared in files that sort after it. Document ids are assigned in
// path order before parsing. Unreadable files are reported through sink and
// LoadResult.Failed; only a cancelled ctx aborts the load.
func (w *Workspace) LoadDir(ctx context.Context, cfg config.Config, sink ProgressSink) (LoadResult, error) {
	if sink == nil {
		sink = nopSink{}
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeWorkspace, "load", 0)
	defer span.End("")

	files, err := cfg.Files()
	if err != nil {
		return LoadResult{}, err
	}
	res := LoadResult{Files: files, Failed: make(map[string]error)}
	span.Int("files", len(files))
	if len(files) == 0 {
		return res, nil
	}
	for _, path := range files {
		sink.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	w.mu.Lock()
	for _, path := range files {
		w.ds.Assign(string(uri.File(path)))
	}
	w.mu.Unlock()

	// индексы уникальны для каждой горутины, мьютекс не нужен
	analyses := make([]*Analysis, len(files))
	errs := make([]error, len(files))

	parse := trace.Begin(tracer, trace.ScopePass, "parse", span.ID())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(cfg.Workers(), len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			sink.OnEvent(Event{File: path, Stage: StageParse, Status: StatusWorking})
			content, flags, err := source.ReadDocument(path)
			if err != nil {
				errs[i] = err
				sink.OnEvent(Event{File: path, Stage: StageParse, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return nil
			}
			doc := trace.Begin(tracer, trace.ScopeDocument, "doc:"+cfg.Rel(path), parse.ID())
			analyses[i] = w.analyze(string(uri.File(path)), content, 0, flags)
			doc.End("")
			sink.OnEvent(Event{File: path, Stage: StageParse, Status: StatusDone, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		parse.End("cancelled")
		return res, fmt.Errorf("load %s: %w", cfg.Root, err)
	}
	parse.End("")

	commit := trace.Begin(tracer, trace.ScopePass, "commit", span.ID())
	committed := make([]*Analysis, 0, len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			commit.End("cancelled")
			return res, fmt.Errorf("load %s: %w", cfg.Root, err)
		}
		if errs[i] != nil {
			res.Failed[path] = errs[i]
			w.log.Warn().Err(errs[i]).Str("path", path).Msg("skipping unreadable file")
			continue
		}
		start := time.Now()
		sink.OnEvent(Event{File: path, Stage: StageCommit, Status: StatusWorking})
		if w.commitLoaded(analyses[i]) {
			committed = append(committed, analyses[i])
			res.Committed++
		}
		sink.OnEvent(Event{File: path, Stage: StageCommit, Status: StatusDone, Elapsed: time.Since(start)})
	}
	commit.Int("committed", res.Committed).End("")

	// отложенные присваивания видят типы всех файлов
	resolve := trace.Begin(tracer, trace.ScopePass, "resolve", span.ID())
	sink.OnEvent(Event{Stage: StageResolve, Status: StatusWorking})
	attached := 0
	for _, a := range committed {
		if err := ctx.Err(); err != nil {
			resolve.End("cancelled")
			return res, fmt.Errorf("load %s: %w", cfg.Root, err)
		}
		attached += w.resolveLoaded(a)
	}
	resolve.Int("attached", attached).End("")
	sink.OnEvent(Event{Stage: StageResolve, Status: StatusDone})
	return res, nil
}
