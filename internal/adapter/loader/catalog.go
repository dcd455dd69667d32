package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kbrag/internal/domain"
)

type catalogFile struct {
	Products          []product       `json:"products"`
	CustomizationInfo json.RawMessage `json:"customization_info"`
}

type product struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Category             string   `json:"category"`
	BasePrice            float64  `json:"base_price"`
	Description          string   `json:"description"`
	Sizes                []string `json:"sizes"`
	Colors               []string `json:"colors"`
	Materials            []string `json:"materials"`
	Features             []string `json:"features"`
	CustomizationOptions []string `json:"customization_options"`
	StockStatus          string   `json:"stock_status"`
	LeadTime             string   `json:"lead_time"`
}

type customizationInfo struct {
	DesignFormats     []string                   `json:"design_formats"`
	MinimumResolution string                     `json:"minimum_resolution"`
	MaximumColors     int                        `json:"maximum_colors"`
	DesignAreas       map[string]json.RawMessage `json:"design_areas"`
	RushOrder         rushOrder                  `json:"rush_order"`
}

type rushOrder struct {
	Available      bool    `json:"available"`
	AdditionalCost float64 `json:"additional_cost"`
	LeadTime       string  `json:"lead_time"`
}

// loadJSON parses a structured record file. The well-known catalog file is
// exploded into per-product documents plus an optional customization-info
// document; any other JSON file becomes one generic document.
func (l *FileLoader) loadJSON(path string) ([]domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if filepath.Base(path) == CatalogFilename {
		return parseCatalog(raw, path)
	}

	// Generic JSON passes through verbatim, re-indented for readability.
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}

	return []domain.Document{{
		Content: string(content),
		Metadata: domain.Metadata{
			Source:   path,
			Type:     domain.TypeJSON,
			Filename: filepath.Base(path),
		},
	}}, nil
}

func parseCatalog(raw []byte, source string) ([]domain.Document, error) {
	var cat catalogFile
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var docs []domain.Document
	for _, p := range cat.Products {
		docs = append(docs, domain.Document{
			Content: p.describe(),
			Metadata: domain.Metadata{
				Source:    source,
				Type:      domain.TypeProduct,
				ProductID: p.ID,
				Category:  p.Category,
				Price:     p.BasePrice,
			},
		})
	}

	if len(cat.CustomizationInfo) > 0 {
		var info customizationInfo
		if err := json.Unmarshal(cat.CustomizationInfo, &info); err != nil {
			return nil, fmt.Errorf("parse customization info: %w", err)
		}
		docs = append(docs, domain.Document{
			Content: info.describe(),
			Metadata: domain.Metadata{
				Source: source,
				Type:   domain.TypeCustomizationInfo,
			},
		})
	}

	return docs, nil
}

// describe synthesizes a human-readable description of the product for
// embedding.
func (p product) describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n", orNA(p.Name))
	fmt.Fprintf(&b, "ID: %s\n", orNA(p.ID))
	fmt.Fprintf(&b, "Category: %s\n", orNA(p.Category))
	fmt.Fprintf(&b, "Price: $%g\n", p.BasePrice)
	fmt.Fprintf(&b, "Description: %s\n", orNA(p.Description))
	fmt.Fprintf(&b, "Sizes Available: %s\n", strings.Join(p.Sizes, ", "))
	fmt.Fprintf(&b, "Colors Available: %s\n", strings.Join(p.Colors, ", "))
	fmt.Fprintf(&b, "Materials: %s\n", strings.Join(p.Materials, ", "))
	fmt.Fprintf(&b, "Features: %s\n", strings.Join(p.Features, ", "))
	fmt.Fprintf(&b, "Customization Options: %s\n", strings.Join(p.CustomizationOptions, ", "))
	fmt.Fprintf(&b, "Stock Status: %s\n", orNA(p.StockStatus))
	fmt.Fprintf(&b, "Lead Time: %s", orNA(p.LeadTime))
	return b.String()
}

func (c customizationInfo) describe() string {
	areas, _ := json.MarshalIndent(c.DesignAreas, "", "  ")

	var b strings.Builder
	b.WriteString("Customization Information:\n")
	fmt.Fprintf(&b, "Accepted Design Formats: %s\n", strings.Join(c.DesignFormats, ", "))
	fmt.Fprintf(&b, "Minimum Resolution: %s\n", orNA(c.MinimumResolution))
	fmt.Fprintf(&b, "Maximum Colors: %d\n", c.MaximumColors)
	fmt.Fprintf(&b, "Design Areas: %s\n", string(areas))
	fmt.Fprintf(&b, "Rush Order Available: %t\n", c.RushOrder.Available)
	fmt.Fprintf(&b, "Rush Order Cost: $%g\n", c.RushOrder.AdditionalCost)
	fmt.Fprintf(&b, "Rush Order Lead Time: %s", orNA(c.RushOrder.LeadTime))
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
