// Package workspace is the single coordination point of the semantic index:
// it owns the document set, the workspace index and the type manager, applies
// document lifecycle events and answers position-based queries.
package workspace

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"go.lsp.dev/uri"

	"luasema/internal/config"
	"luasema/internal/index"
	"luasema/internal/parser"
	"luasema/internal/sema"
	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/syntax"
	"luasema/internal/typemgr"
)

// ErrUnknownDocument is returned for a uri the workspace has never opened or
// loaded, or has already closed.
var ErrUnknownDocument = errors.New("unknown document")

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Workspace) { w.log = l }
}

// WithReserved adds names that are never member owners of a named type.
func WithReserved(names ...string) Option {
	return func(w *Workspace) { w.reserved = append(w.reserved, names...) }
}

// WithNamespace sets the namespace in effect before any @namespace tag.
func WithNamespace(ns string) Option {
	return func(w *Workspace) { w.namespace = ns }
}

// WithConfig applies the analysis settings of a loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(w *Workspace) {
		w.reserved = append(w.reserved, cfg.Reserved...)
		w.namespace = cfg.Namespace
	}
}

// Workspace holds the committed semantic state. Queries take the read lock;
// every mutation is serialised under the write lock. Parsing and scope
// building run outside the lock.
type Workspace struct {
	mu  sync.RWMutex
	ds  *source.DocSet
	idx *index.Index
	mgr *typemgr.Manager
	// latest requested version per open document
	latest map[source.DocID]int32

	reserved  []string
	namespace string
	log       zerolog.Logger
}

// New creates an empty workspace.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		ds:     source.NewDocSet(),
		latest: make(map[source.DocID]int32),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.idx = index.New(w.reserved...)
	w.mgr = typemgr.New(w.idx, typemgr.WithLogger(w.log))
	return w
}

// Analysis is a parsed and scoped document version waiting to be committed.
type Analysis struct {
	Doc    *source.Document
	Syntax *syntax.Tree
	Table  *symbols.Table
	batch  *index.Batch
}

// Analyze registers version as the latest requested one for u and builds its
// syntax and scopes. Only the registration takes the lock.
func (w *Workspace) Analyze(u uri.URI, text string, version int32) *Analysis {
	return w.analyze(string(u), []byte(text), version, source.DocVirtual)
}

func (w *Workspace) analyze(key string, content []byte, version int32, flags source.DocFlags) *Analysis {
	w.mu.Lock()
	doc := w.ds.Prepare(key, content, version, flags)
	if v, ok := w.latest[doc.ID]; !ok || version >= v {
		w.latest[doc.ID] = version
	}
	w.mu.Unlock()

	tree := parser.Parse(doc, parser.Options{})
	batch := w.idx.NewBatch(doc.ID)
	tab := symbols.Build(tree, doc.ID, symbols.Options{
		Sink:      batch,
		Namespace: w.namespace,
		Logger:    w.log,
	})
	return &Analysis{Doc: doc, Syntax: tree, Table: tab, batch: batch}
}

// OnDocumentAnalyzed commits an analysis. It is discarded, and false is
// returned, when a newer version of the document was requested meanwhile or
// the document was closed.
func (w *Workspace) OnDocumentAnalyzed(a *Analysis) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.current(a) {
		return false
	}
	w.commitStructure(a)
	w.commitDeferred(a)
	return true
}

// current reports whether a is still the version to commit.
func (w *Workspace) current(a *Analysis) bool {
	latest, open := w.latest[a.Doc.ID]
	if open && a.Doc.Version >= latest {
		return true
	}
	w.log.Debug().
		Str("uri", a.Doc.URI).
		Int32("version", a.Doc.Version).
		Int32("latest", latest).
		Bool("open", open).
		Msg("superseded analysis discarded")
	return false
}

// commitLoaded commits only the structural facts of a; LoadDir resolves the
// deferred attachments once every file is in.
func (w *Workspace) commitLoaded(a *Analysis) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.current(a) {
		return false
	}
	w.commitStructure(a)
	return true
}

// resolveLoaded runs the deferred pass of a committed analysis unless the
// document was replaced or closed since.
func (w *Workspace) resolveLoaded(a *Analysis) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ds.Get(a.Doc.ID) != a.Doc {
		return 0
	}
	return w.commitDeferred(a)
}

// commitStructure replaces everything the document contributed with the
// facts of its structural pass. The type manager sees the batch before the
// index so adoption from the index only picks up other documents' facts.
func (w *Workspace) commitStructure(a *Analysis) {
	id := a.Doc.ID
	w.idx.Remove(id)
	w.mgr.Remove(id)

	w.mgr.Apply(a.batch)
	w.idx.Apply(a.batch)
	w.idx.PutTable(a.Table)
	w.ds.Store(a.Doc)

	w.log.Debug().
		Str("uri", a.Doc.URI).
		Int32("version", a.Doc.Version).
		Int("facts", a.batch.Len()).
		Int("syntax_errors", len(a.Syntax.Errors)).
		Msg("document committed")
}

// commitDeferred attaches the document's member assignments whose owner is
// known only from inference. It returns the number attached.
func (w *Workspace) commitDeferred(a *Analysis) int {
	deferred := w.idx.NewBatch(a.Doc.ID)
	attached := sema.New(w.idx, w.mgr).ResolveDeferred(a.Table, deferred)
	w.mgr.Apply(deferred)
	w.idx.Apply(deferred)
	if attached > 0 {
		w.log.Debug().Str("uri", a.Doc.URI).Int("attached", attached).Msg("deferred members resolved")
	}
	return attached
}

// OnDocumentRemoved drops every fact of doc. Removing an unknown or already
// removed document is a no-op.
func (w *Workspace) OnDocumentRemoved(doc source.DocID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.remove(doc)
}

func (w *Workspace) remove(doc source.DocID) {
	_, open := w.latest[doc]
	w.idx.Remove(doc)
	w.mgr.Remove(doc)
	w.ds.Remove(doc)
	delete(w.latest, doc)
	if open {
		w.log.Debug().Uint32("doc", uint32(doc)).Msg("document removed")
	}
}

// Open analyzes and commits a document. It reports whether the result was
// committed.
func (w *Workspace) Open(u uri.URI, text string, version int32) bool {
	return w.OnDocumentAnalyzed(w.Analyze(u, text, version))
}

// Update re-analyzes an open document.
func (w *Workspace) Update(u uri.URI, text string, version int32) (bool, error) {
	if _, ok := w.lookup(u); !ok {
		return false, ErrUnknownDocument
	}
	return w.Open(u, text, version), nil
}

// Close removes an open document.
func (w *Workspace) Close(u uri.URI) error {
	id, ok := w.lookup(u)
	if !ok {
		return ErrUnknownDocument
	}
	w.OnDocumentRemoved(id)
	return nil
}

// lookup returns the id of an open document.
func (w *Workspace) lookup(u uri.URI) (source.DocID, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	id, ok := w.ds.Lookup(string(u))
	if !ok {
		return source.NoDocID, false
	}
	_, open := w.latest[id]
	return id, open
}

// Stats summarises the committed state.
type Stats struct {
	index.Stats
	Types int
}

func (w *Workspace) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Stats{Stats: w.idx.Stats(), Types: w.mgr.Len()}
}

// Documents returns the uris of committed documents, by id.
func (w *Workspace) Documents() []uri.URI {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := w.idx.Docs()
	out := make([]uri.URI, 0, len(ids))
	for _, id := range ids {
		if doc := w.ds.Get(id); doc != nil {
			out = append(out, uri.URI(doc.URI))
		}
	}
	return out
}
