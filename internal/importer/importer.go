// Package importer maps the nodes of a legacy truck document onto a canonical
// node array and rewrites every node reference to point into it.
//
// Legacy files placed nodes in the array in the order their definitions
// appeared, which let files reference nodes before they existed, reference
// nodes that never existed, and made the index of generated nodes (wheels,
// cinecams) depend on everything defined before them. The Importer instead
// assigns positions by section, in this order:
//
//  1. nodes          one node per line
//  2. nodes2         one node per line
//  3. cinecam        one node per line
//  4. wheels         rays*2 nodes per line
//  5. wheels2        rays*4 nodes per line
//  6. meshwheels     rays*2 nodes per line
//  7. meshwheels2    rays*2 nodes per line
//  8. flexbodywheels rays*4 nodes per line
//
// and then resolves numbered, named and generated references against that
// table. Problems are recorded as diag messages; a pass never stops early.
//
// An Importer holds the state of one pass over one document and is not safe
// for concurrent use.
package importer

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/rigseq/api"
	"github.com/agentic-research/rigseq/internal/diag"
	"github.com/agentic-research/rigseq/internal/logging"
	"github.com/rs/zerolog"
)

// NoAnchor is passed to ResolveNodeFrom when the referring construct has no
// node of its own.
const NoAnchor = -1

// Importer builds the canonical node table for one document and remaps the
// document's node references onto it.
type Importer struct {
	enabled bool

	entries      []NodeEntry
	numbered     map[uint32]int
	numberedIDs  *roaring.Bitmap
	named        map[string]int
	generated    map[api.GeneratedRef]int
	counts       [numCategories]int
	constructs   map[api.Keyword]int
	lastCategory int

	// resolution statistics
	referenced     *roaring.Bitmap
	totalResolved  int
	resolvedToSelf int
	numUnresolved  int

	// scope used to tag messages
	keyword api.Keyword
	module  string
	// set while Process resolves a document
	walking bool

	messages diag.Log
	logger   zerolog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger used for statistics, dumps and message echo.
func WithLogger(l zerolog.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// New returns a disabled Importer. Call Init to start a pass.
func New(opts ...Option) *Importer {
	im := &Importer{logger: logging.GetLogger("importer")}
	for _, opt := range opts {
		opt(im)
	}
	im.resetTable()
	return im
}

// Init starts a fresh pass. With enabled false every other operation is a
// pass-through: nothing is registered and references are left as written.
func (im *Importer) Init(enabled bool) {
	im.resetTable()
	im.messages.Reset()
	im.keyword = api.KeywordInvalid
	im.module = ""
	im.enabled = enabled
}

// Disable turns remapping off and discards the node table. Recorded
// messages are kept.
func (im *Importer) Disable() {
	im.enabled = false
	im.resetTable()
}

// IsEnabled reports whether references are being remapped.
func (im *Importer) IsEnabled() bool { return im.enabled }

func (im *Importer) resetTable() {
	im.entries = nil
	im.numbered = make(map[uint32]int)
	im.numberedIDs = roaring.New()
	im.named = make(map[string]int)
	im.generated = make(map[api.GeneratedRef]int)
	im.counts = [numCategories]int{}
	im.constructs = make(map[api.Keyword]int)
	im.lastCategory = 0
	im.referenced = roaring.New()
	im.totalResolved = 0
	im.resolvedToSelf = 0
	im.numUnresolved = 0
}

func (im *Importer) NumErrors() int   { return im.messages.NumErrors() }
func (im *Importer) NumWarnings() int { return im.messages.NumWarnings() }
func (im *Importer) NumOther() int    { return im.messages.NumOther() }
func (im *Importer) NumFatal() int    { return im.messages.NumFatal() }

// Messages returns the diagnostics recorded so far, in emission order.
func (im *Importer) Messages() []diag.Message { return im.messages.Messages() }

// MessagesAsText renders the diagnostic log, one message per line.
func (im *Importer) MessagesAsText() string { return im.messages.String() }

func (im *Importer) addMessage(sev diag.Severity, kw api.Keyword, format string, args ...any) {
	m := im.messages.Add(sev, fmt.Sprintf(format, args...), kw, im.module)
	im.logger.Debug().
		Str("severity", m.Severity.String()).
		Str("keyword", m.Keyword.String()).
		Str("module", m.Module).
		Msg(m.Text)
}

func (im *Importer) setScope(kw api.Keyword, module string) {
	im.keyword = kw
	im.module = module
}
