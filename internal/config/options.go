package config

import (
	"github.com/shinyvision/sniffctx/internal/utils"
	"github.com/tliron/commonlog"
)

// ApplyInitializationOptions overlays the options an editor sends with the
// LSP initialize request:
//
//	{"cache": false, "disabled_sniffs": ["Imports.Unused"], "include": [...],
//	 "exclude": [...], "store_size": 200}
//
// Unknown keys and values of the wrong type are ignored.
func (c *Config) ApplyInitializationOptions(options any) {
	logger := commonlog.GetLoggerf("sniffctx.config")
	m, ok := options.(map[string]any)
	if !ok {
		return
	}

	if v, ok := m["cache"]; ok {
		if b, ok := v.(bool); ok {
			c.Cache.Enabled = b
		}
	}
	if v, ok := m["disabled_sniffs"]; ok {
		if codes := stringList(v); codes != nil {
			c.Sniffs.Disabled = codes
		}
	}
	if v, ok := m["include"]; ok {
		if patterns := stringList(v); len(patterns) > 0 {
			c.Files.Include = patterns
		}
	}
	if v, ok := m["exclude"]; ok {
		if patterns := stringList(v); patterns != nil {
			c.Files.Exclude = patterns
		}
	}
	if v, ok := m["store_size"]; ok {
		// JSON numbers decode as float64.
		if n, ok := v.(float64); ok && n > 0 {
			c.StoreSize = int(n)
		}
	}

	if err := c.Validate(); err != nil {
		logger.Warningf("initialization options: %v", err)
	}
}

func stringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := []string{}
	for _, item := range arr {
		if str, ok := item.(string); ok && str != "" {
			out = utils.AppendUnique(out, str)
		}
	}
	return out
}
