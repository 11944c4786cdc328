package narrative

import (
	"bytes"
	"fmt"
	"os"

	"gonarrate/domain/core"
	domain "gonarrate/domain/narrative"

	"gopkg.in/yaml.v3"
)

// LoadPage reads and validates a YAML page manifest
func LoadPage(path string) (*domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page manifest: %w", err)
	}
	page, err := ParsePage(data)
	if err != nil {
		return nil, fmt.Errorf("page manifest %s: %w", path, err)
	}
	return page, nil
}

// ParsePage decodes a manifest. Unknown keys and placeholders naming no
// declared metric are rejected at load.
func ParsePage(data []byte) (*domain.Page, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var page domain.Page
	if err := dec.Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if err := checkPlaceholders(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// checkPlaceholders verifies every {name} in substituted text is a metric
func checkPlaceholders(page *domain.Page) error {
	declared := make(map[string]bool, len(page.Metrics))
	for _, m := range page.Metrics {
		declared[m.Name] = true
	}
	check := func(where, text string) error {
		for _, name := range Placeholders(text) {
			if !declared[name] {
				return fmt.Errorf("%w: %s: %w {%s}", core.ErrInvalidPage, where, core.ErrUnknownPlaceholder, name)
			}
		}
		return nil
	}

	if err := check("title", page.Title); err != nil {
		return err
	}
	if err := check("subtitle", page.Subtitle); err != nil {
		return err
	}
	for i, block := range page.Blocks {
		where := fmt.Sprintf("block %d (%s)", i, block.Kind)
		var text string
		switch block.Kind {
		case domain.BlockHeading, domain.BlockText, domain.BlockQuote:
			text = block.Text
		case domain.BlockImage:
			text = block.Caption
		default:
			continue
		}
		if err := check(where, text); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the dataset identifier to source reference map the
// loader is constructed with
func Registry(page *domain.Page) map[string]string {
	refs := make(map[string]string, len(page.Datasets))
	for _, ref := range page.Datasets {
		refs[ref.ID] = ref.Source
	}
	return refs
}
