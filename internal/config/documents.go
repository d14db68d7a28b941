package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DocumentRequirement describes one required document: the stable key it
// is tracked under, the name shown in communications, and the keyword
// variants the classifier matches file names against.
type DocumentRequirement struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"display_name"`
	Keywords    []string `json:"keywords"`
}

// DocumentConfig is the versioned required-document checklist. Candidates
// freeze the version they were provisioned with, so editing this
// configuration never reshapes records already in flight.
type DocumentConfig struct {
	Version      int                   `json:"version"`
	SeedDocument DocumentRequirement   `json:"seed_document"`
	Requirements []DocumentRequirement `json:"requirements"`
}

// Keys returns the required document keys in checklist order.
func (c *DocumentConfig) Keys() []string {
	keys := make([]string, len(c.Requirements))
	for i, r := range c.Requirements {
		keys[i] = r.Key
	}
	return keys
}

// Requirement looks up a requirement by key.
func (c *DocumentConfig) Requirement(key string) (DocumentRequirement, bool) {
	for _, r := range c.Requirements {
		if r.Key == key {
			return r, true
		}
	}
	return DocumentRequirement{}, false
}

// Validate checks the checklist is usable; failures are fatal at startup.
func (c *DocumentConfig) Validate() error {
	if len(c.Requirements) == 0 {
		return fmt.Errorf("required-document set is empty")
	}
	seen := make(map[string]bool, len(c.Requirements))
	for _, r := range c.Requirements {
		if r.Key == "" {
			return fmt.Errorf("requirement with empty key")
		}
		if seen[r.Key] {
			return fmt.Errorf("duplicate requirement key %q", r.Key)
		}
		seen[r.Key] = true
		if len(r.Keywords) == 0 {
			return fmt.Errorf("requirement %q has no keywords", r.Key)
		}
	}
	if c.SeedDocument.Key == "" || len(c.SeedDocument.Keywords) == 0 {
		return fmt.Errorf("seed document requires a key and keywords")
	}
	if seen[c.SeedDocument.Key] {
		return fmt.Errorf("seed document key %q collides with a requirement", c.SeedDocument.Key)
	}
	return nil
}

// LoadDocumentConfig reads the checklist from a JSON file, falling back
// to the built-in default when no path is configured.
func LoadDocumentConfig(path string) (*DocumentConfig, error) {
	if path == "" {
		cfg := defaultDocumentConfig()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document config: %w", err)
	}

	var cfg DocumentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse document config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// defaultDocumentConfig is the standard checklist for new hires.
func defaultDocumentConfig() *DocumentConfig {
	return &DocumentConfig{
		Version: 1,
		SeedDocument: DocumentRequirement{
			Key:         "offer_letter",
			DisplayName: "Countersigned Offer Letter",
			Keywords:    []string{"offer", "countersigned"},
		},
		Requirements: []DocumentRequirement{
			{Key: "aadhaar", DisplayName: "Aadhaar Card", Keywords: []string{"aadhaar", "adhar", "uid"}},
			{Key: "pan", DisplayName: "PAN Card", Keywords: []string{"pan", "pancard"}},
			{Key: "education", DisplayName: "Education Certificate", Keywords: []string{"education", "degree", "certificate", "mark", "10th", "12th", "btech"}},
			{Key: "photo", DisplayName: "Passport Photo", Keywords: []string{"photo", "passport", "selfie"}},
			{Key: "passbook", DisplayName: "Bank Passbook", Keywords: []string{"passbook", "bank", "cheque", "statement"}},
		},
	}
}
