package lsp

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"formulight/internal/classify"
	"formulight/internal/diagnostics"
	"formulight/internal/format"
	"formulight/internal/keywords"
	"formulight/internal/scanner"
	"formulight/token"
)

// ServerName is reported to clients in the initialize result.
const ServerName = "formula-lsp"

// Define the set of supported semantic token types (advertised in the initialize result)
var SemanticTokenTypes = []string{
	"function",
	"property",
	"variable",
	"keyword",
	"operator",
	"string",
	"number",
	"comment",
}

// Define the set of supported semantic token modifiers
var SemanticTokenModifiers = []string{
	"defaultLibrary",
	"readonly",
}

var log = commonlog.GetLogger("formula.lsp")

// FormulaHandler implements the LSP server handlers for formula documents.
// Documents live in memory; nothing is read from disk.
type FormulaHandler struct {
	mu        sync.RWMutex
	documents map[protocol.DocumentUri]*document
	version   string
}

// NewFormulaHandler creates and returns a new FormulaHandler instance
func NewFormulaHandler(version string) *FormulaHandler {
	return &FormulaHandler{
		documents: make(map[protocol.DocumentUri]*document),
		version:   version,
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *FormulaHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			HoverProvider:              true,
			DocumentFormattingProvider: true,
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &h.version,
		},
	}, nil
}

// Initialized is called after the client receives the server's capabilities and completes initialization
func (h *FormulaHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

// Shutdown handles the LSP shutdown request
func (h *FormulaHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (h *FormulaHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen stores the document and publishes its diagnostics
func (h *FormulaHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Debugf("opened %s", params.TextDocument.URI)

	doc := newDocument(params.TextDocument.URI, params.TextDocument.Text)
	h.store(doc)
	h.publish(ctx, doc)
	return nil
}

// TextDocumentDidChange applies content changes in order and republishes diagnostics
func (h *FormulaHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed %s", params.TextDocument.URI)

	doc, err := h.get(params.TextDocument.URI)
	if err != nil {
		doc = newDocument(params.TextDocument.URI, "")
	}
	for _, change := range params.ContentChanges {
		doc = doc.applyChange(change)
	}
	h.store(doc)
	h.publish(ctx, doc)
	return nil
}

// TextDocumentDidClose forgets the document and clears its diagnostics
func (h *FormulaHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Debugf("closed %s", params.TextDocument.URI)

	h.mu.Lock()
	delete(h.documents, params.TextDocument.URI)
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

// TextDocumentCompletion offers every built-in function and constant; the
// client filters by the typed prefix.
func (h *FormulaHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	functionKind := protocol.CompletionItemKindFunction
	constantKind := protocol.CompletionItemKindConstant

	items := []protocol.CompletionItem{}
	for _, name := range keywords.Functions() {
		detail := keywords.CategoryOf(name) + " function"
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &functionKind,
			Detail:     &detail,
			InsertText: ptrString(name + "("),
		})
	}
	for _, name := range keywords.Constants() {
		items = append(items, protocol.CompletionItem{
			Label: name,
			Kind:  &constantKind,
		})
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// TextDocumentHover describes the built-in function or constant under the cursor
func (h *FormulaHandler) TextDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, err := h.get(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	tok, ok := tokenAt(doc, doc.offset(params.Position))
	if !ok {
		return nil, nil
	}

	var text string
	switch tok.Kind {
	case token.FUNCTION:
		text = fmt.Sprintf("**%s** (%s function)", tok.Value, keywords.CategoryOf(tok.Value))
	case token.CONSTANT:
		text = fmt.Sprintf("**%s** (constant)", tok.Value)
	case token.CUSTOM_FUNCTION:
		text = fmt.Sprintf("**%s** (custom function)", tok.Value)
	case token.FORMULA_FIELD:
		text = fmt.Sprintf("**%s** (formula field)", tok.Value)
	default:
		return nil, nil
	}

	r := doc.rangeOf(tok.Start, tok.End)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: text},
		Range:    &r,
	}, nil
}

// TextDocumentFormatting replaces the whole document with its prettified form
func (h *FormulaHandler) TextDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc, err := h.get(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	pretty := format.Prettify(doc.text)
	if pretty == doc.text {
		return []protocol.TextEdit{}, nil
	}

	return []protocol.TextEdit{{
		Range:   doc.rangeOf(0, len(doc.text)),
		NewText: pretty,
	}}, nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *FormulaHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc, err := h.get(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	return &protocol.SemanticTokens{
		Data: encodeSemanticTokens(collectSemanticTokens(doc)),
	}, nil
}

func (h *FormulaHandler) store(doc *document) {
	h.mu.Lock()
	h.documents[doc.uri] = doc
	h.mu.Unlock()
}

func (h *FormulaHandler) get(uri protocol.DocumentUri) (*document, error) {
	h.mu.RLock()
	doc, ok := h.documents[uri]
	h.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("document %s is not open", uri)
	}
	return doc, nil
}

func (h *FormulaHandler) publish(ctx *glsp.Context, doc *document) {
	diags := ConvertFormulaErrors(doc, diagnostics.DetectErrors(doc.text))
	sendDiagnosticNotification(ctx, doc.uri, diags)
}

// tokenAt returns the classified token covering offset. A cursor sitting
// just past a word still hovers that word.
func tokenAt(doc *document, offset int) (token.Token, bool) {
	var before *token.Token
	tokens := classify.Classify(scanner.Tokenize(doc.text))
	for i := range tokens {
		tok := &tokens[i]
		if tok.Kind == token.WHITESPACE || tok.Kind == token.PARENTHESIS {
			continue
		}
		if offset >= tok.Start && offset < tok.End {
			return *tok, true
		}
		if tok.End == offset {
			before = tok
		}
	}
	if before != nil {
		return *before, true
	}
	return token.Token{}, false
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	log.Debugf("publishing %d diagnostics for %s", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
