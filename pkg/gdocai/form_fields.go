package gdocai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// ExtractFormFields combines form fields from all pages into a single map.
// Field names lose a trailing colon; repeated names keep every distinct
// value in document order.
func ExtractFormFields(docProto *documentaipb.Document) map[string][]string {
	fields := make(map[string][]string)

	for _, page := range docProto.GetPages() {
		for _, field := range page.GetFormFields() {
			key := strings.TrimSpace(textFromLayout(field.GetFieldName(), docProto.GetText()))
			key = strings.TrimSpace(strings.TrimSuffix(key, ":"))
			value := strings.TrimSpace(textFromLayout(field.GetFieldValue(), docProto.GetText()))
			if key == "" {
				continue
			}

			seen := false
			for _, v := range fields[key] {
				if v == value {
					seen = true
					break
				}
			}
			if !seen {
				fields[key] = append(fields[key], value)
			}
		}
	}

	return fields
}
