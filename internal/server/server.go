package server

import (
	"sync"
	"time"

	"github.com/shinyvision/sniffctx/internal/config"
	"github.com/shinyvision/sniffctx/internal/php"
	"github.com/shinyvision/sniffctx/internal/poscache"
	"github.com/shinyvision/sniffctx/internal/sniff"
	"github.com/shinyvision/sniffctx/internal/state"
	"github.com/shinyvision/sniffctx/internal/tracking"
	"github.com/shinyvision/sniffctx/internal/utils"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

const lsName = "sniffctx"

var version = "0.1.0"

var logger = commonlog.GetLoggerf("sniffctx.server")

// Server is the language server.
type Server struct {
	config   *config.Config
	state    *state.State
	store    *php.DocumentStore
	debounce time.Duration
	h        protocol.Handler

	// mu guards the runner and its tracking context, which are shared by
	// diagnostics and hover.
	mu     sync.Mutex
	runner *sniff.Runner
}

// NewServer creates a new server.
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	s := &Server{
		state:    state.NewState(),
		debounce: 500 * time.Millisecond,
	}
	s.configure(cfg)
	s.h = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.didOpen,
		TextDocumentDidChange: s.didChange,
		TextDocumentDidClose:  s.didClose,
		TextDocumentHover:     s.hover,
	}
	return s
}

// Run runs the language server.
func (s *Server) Run() {
	server := glspserver.NewServer(&s.h, lsName, false)
	server.RunStdio()
}

func (s *Server) configure(cfg *config.Config) {
	cache := poscache.New()
	cache.SetEnabled(cfg.Cache.Enabled)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.store = php.NewDocumentStore(cfg.StoreSize)
	s.runner = sniff.NewRunner(tracking.NewContext(cache), sniff.Enabled(cfg.Sniffs.Disabled)...)
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	caps := s.h.CreateServerCapabilities()
	openClose := true
	change := protocol.TextDocumentSyncKindIncremental
	caps.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &change,
	}
	caps.HoverProvider = true

	root := "."
	if params.RootURI != nil {
		root = utils.UriToPath(*params.RootURI)
	} else if len(params.WorkspaceFolders) > 0 {
		root = utils.UriToPath(params.WorkspaceFolders[0].URI)
	}

	cfg, err := config.Load(root)
	if err != nil {
		logger.Warningf("falling back to defaults: %v", err)
		cfg = config.NewConfig()
		cfg.Root = root
	}
	if params.InitializationOptions != nil {
		cfg.ApplyInitializationOptions(params.InitializationOptions)
	}
	s.configure(cfg)
	logger.Infof("initialized in %s: cache %t, %d sniffs disabled", root, cfg.Cache.Enabled, len(cfg.Sniffs.Disabled))

	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error { return nil }
func (s *Server) shutdown(_ *glsp.Context) error                                   { return nil }
func (s *Server) setTrace(_ *glsp.Context, p *protocol.SetTraceParams) error {
	protocol.SetTraceValue(p.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, p *protocol.DidOpenTextDocumentParams) error {
	uri := p.TextDocument.URI
	s.state.SetDocument(uri, p.TextDocument.Text, p.TextDocument.Version)
	if _, err := s.store.Open(utils.UriToPath(uri), []byte(p.TextDocument.Text)); err != nil {
		return err
	}
	s.publish(ctx.Notify, uri)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, p *protocol.DidChangeTextDocumentParams) error {
	uri := p.TextDocument.URI
	text, _, ok := s.state.GetDocument(uri)
	if !ok {
		return nil
	}

	path := utils.UriToPath(uri)
	for _, c := range p.ContentChanges {
		switch ch := c.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = ch.Text
			if _, err := s.store.Open(path, []byte(text)); err != nil {
				return err
			}
		case protocol.TextDocumentContentChangeEvent:
			start := ch.Range.Start.IndexIn(text)
			end := ch.Range.End.IndexIn(text)
			if start < 0 || end < start || end > len(text) {
				continue
			}
			edit := php.NewInputEdit([]byte(text), start, end, ch.Text)
			text = text[:start] + ch.Text + text[end:]
			if _, err := s.store.Edit(path, []byte(text), &edit); err != nil {
				return err
			}
		}
	}
	s.state.SetDocument(uri, text, p.TextDocument.Version)

	notify := ctx.Notify
	s.state.Schedule(uri, s.debounce, func() { s.publish(notify, uri) })
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, p *protocol.DidCloseTextDocumentParams) error {
	uri := p.TextDocument.URI
	s.state.DeleteDocument(uri)
	s.store.Close(utils.UriToPath(uri))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}
