// pkg/adapter/config/masked.go
package config

import (
	"encoding/json"
	"net/http"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
)

func (s *ViperStore) GetConfigHandler(whitelist domainconfig.Whitelist, maskStrategy domainconfig.MaskStrategy) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		entries, err := s.GetMaskedEntries(whitelist, maskStrategy)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// GetMaskedEntries flattens the layered configuration and masks every value.
func (s *ViperStore) GetMaskedEntries(whitelist domainconfig.Whitelist, maskStrategy domainconfig.MaskStrategy) ([]domainconfig.FlatEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maskStrategy == nil {
		// Use default strategy if none provided
		maskStrategy = domainconfig.NewDefaultMaskStrategy()
	}

	entries := domainconfig.Flatten(buildTree(s.allLayers()), s.sources(), whitelist)
	return domainconfig.MaskEntries(entries, maskStrategy), nil
}
