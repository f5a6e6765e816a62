package ingest

import (
	"github.com/agentic-research/rigseq/api"
	"github.com/agentic-research/rigseq/internal/config"
	"github.com/agentic-research/rigseq/internal/importer"
	"github.com/agentic-research/rigseq/internal/logging"
	"github.com/rs/zerolog"
)

// Engine drives one resolution pass: load a document, build the canonical
// table and rewrite its references.
type Engine struct {
	Loader *Loader
	Config *config.Config
	Logger zerolog.Logger
}

// Result is the outcome of a pass. Document has been resolved in place;
// Importer holds the table, statistics and diagnostics.
type Result struct {
	Document *api.Document
	Importer *importer.Importer
}

// OK reports whether the pass recorded no errors.
func (r *Result) OK() bool { return r.Importer.NumErrors() == 0 }

func NewEngine(loader *Loader, cfg *config.Config) *Engine {
	if loader == nil {
		loader = NewOSLoader()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		Loader: loader,
		Config: cfg,
		Logger: logging.GetLogger("ingest"),
	}
}

// Run loads the document at path and resolves it. Load failures are
// returned as errors; resolution problems are recorded on the importer.
func (e *Engine) Run(path string) (*Result, error) {
	done := logging.LogOperationStart(e.Logger, "run")
	defer done()

	doc, err := e.Loader.Load(path)
	if err != nil {
		return nil, err
	}
	return e.Resolve(doc), nil
}

// Resolve runs a pass over an already loaded document.
func (e *Engine) Resolve(doc *api.Document) *Result {
	name := ""
	modules := 0
	if doc != nil {
		name = doc.Name
		modules = len(doc.Modules)
	}
	im := importer.New(importer.WithLogger(logging.GetLogger("importer").With().Str("document", name).Logger()))
	im.Init(e.Config.Legacy.Enabled)
	im.Process(doc)

	im.LogNodeStatistics()
	if e.Config.Log.DumpNodes {
		im.LogAllNodes()
	}
	e.Logger.Info().
		Str("document", name).
		Int("modules", modules).
		Int("errors", im.NumErrors()).
		Int("warnings", im.NumWarnings()).
		Msg("Document resolved")

	return &Result{Document: doc, Importer: im}
}
