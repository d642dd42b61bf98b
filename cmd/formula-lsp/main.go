// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"
	"strconv"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"formulight/internal/lsp"
)

var (
	version = "0.1.0"        // Server version
	handler protocol.Handler // Protocol handler instance (wired up below)
)

func main() {
	// Verbosity 1 logs info and above; FORMULA_LSP_VERBOSITY overrides it.
	// Logs go to stderr since stdout carries the protocol.
	commonlog.Configure(verbosity(), nil)
	log := commonlog.GetLogger("formula.lsp.main")

	formulaHandler := lsp.NewFormulaHandler(version)

	handler = protocol.Handler{
		Initialize:                     formulaHandler.Initialize,
		Initialized:                    formulaHandler.Initialized,
		Shutdown:                       formulaHandler.Shutdown,
		SetTrace:                       formulaHandler.SetTrace,
		TextDocumentDidOpen:            formulaHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           formulaHandler.TextDocumentDidClose,
		TextDocumentDidChange:          formulaHandler.TextDocumentDidChange,
		TextDocumentCompletion:         formulaHandler.TextDocumentCompletion,
		TextDocumentHover:              formulaHandler.TextDocumentHover,
		TextDocumentFormatting:         formulaHandler.TextDocumentFormatting,
		TextDocumentSemanticTokensFull: formulaHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsp.ServerName, false)

	log.Infof("starting %s %s", lsp.ServerName, version)

	// Start the server over standard input/output (used by most editors for LSP)
	if err := s.RunStdio(); err != nil {
		log.Errorf("server stopped: %s", err)
		os.Exit(1)
	}
}

func verbosity() int {
	if v, err := strconv.Atoi(os.Getenv("FORMULA_LSP_VERBOSITY")); err == nil {
		return v
	}
	return 1
}
