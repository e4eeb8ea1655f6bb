package annotate

import (
	"fmt"
	"regexp"
	"strings"
)

// pdfString matches a literal PDF string, escaped parentheses included.
const pdfString = `\(((?:\\.|[^\\)])+)\)`

var ocgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*` + pdfString),
	regexp.MustCompile(`/OCG\s*<<[^>]*?/Name\s*` + pdfString),
	regexp.MustCompile(`<</Type/OCG/Name` + pdfString),
	regexp.MustCompile(`/Name\s*` + pdfString + `[\s\S]{1,50}/Type\s*/OCG`),
}

// detectPDFLayers attempts to find optional content group (layer) names in
// the raw PDF data.
func detectPDFLayers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	content := string(pdfData)
	var layers []string
	for _, re := range ocgPatterns {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			name := unescapePDFString(match[1])
			if len(name) >= 2 && name[0] == '\xfe' && name[1] == '\xff' {
				if decoded, err := decodeUTF16BE([]byte(name)); err == nil {
					name = decoded
				}
			}
			layers = append(layers, name)
		}
	}

	unique := make([]string, 0, len(layers))
	seen := make(map[string]bool)
	for _, l := range layers {
		if !seen[l] {
			seen[l] = true
			unique = append(unique, l)
		}
	}
	return unique, nil
}

// LayerCheckResult contains the results of checking for coordinate layers
type LayerCheckResult struct {
	Layers    []string // All detected layers
	HasLayer  bool     // True if the coordinate layer exists
	LayerName string   // Name of the detected layer (if any)
	Warnings  []string // Layers that look like earlier annotations
}

// CheckExistingLayers looks for layers named after layerName, alone or
// with a "(Page N)" suffix.
func CheckExistingLayers(pdfData []byte, layerName string) (LayerCheckResult, error) {
	result := LayerCheckResult{}

	layers, err := detectPDFLayers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	pageLayer := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*\d+`, regexp.QuoteMeta(layerName)))
	for _, layer := range layers {
		if layer == layerName || pageLayer.MatchString(layer) {
			result.HasLayer = true
			result.LayerName = layer
			break
		}
		if strings.Contains(strings.ToLower(layer), "coord") && !strings.HasPrefix(layer, layerName) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Existing layer detected that might contain coordinates: %s", layer))
		}
	}
	return result, nil
}
