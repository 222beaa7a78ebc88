package server

import (
	"github.com/shinyvision/sniffctx/internal/sniff"
	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/shinyvision/sniffctx/internal/utils"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var diagnosticSource = lsName

func (s *Server) publish(notify glsp.NotifyFunc, uri protocol.DocumentUri) {
	text, version, ok := s.state.GetDocument(uri)
	if !ok {
		return
	}
	diagnostics := s.diagnostics(uri, text)
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	v := protocol.UInteger(version)
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &v,
		Diagnostics: diagnostics,
	})
}

// diagnostics runs the sniffs over the open document at uri. Files outside
// the configured include patterns get none.
func (s *Server) diagnostics(uri protocol.DocumentUri, text string) []protocol.Diagnostic {
	path := utils.UriToPath(uri)
	doc, ok := s.store.Get(path)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Included(s.config.Rel(path)) {
		return nil
	}
	file := doc.File()
	violations, err := s.runner.Run(file)
	if err != nil {
		logger.Errorf("sniffs failed on %s: %v", path, err)
	}

	out := make([]protocol.Diagnostic, 0, len(violations))
	for _, v := range violations {
		out = append(out, toDiagnostic(text, file.At(v.Pos), v))
	}
	return out
}

func toDiagnostic(text string, tok token.Token, v sniff.Violation) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityWarning
	if v.Severity == sniff.SeverityError {
		severity = protocol.DiagnosticSeverityError
	}
	return protocol.Diagnostic{
		Range:    tokenRange(text, tok),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: v.Code},
		Source:   &diagnosticSource,
		Message:  v.Message,
	}
}
