package logging

const (
	categoryKey    = "Category"
	subCategoryKey = "SubCategory"
)

func logParamsToZapParams(cat Category, sub SubCategory, keys map[ExtraKey]any) []any {
	params := make([]any, 0, 2*len(keys)+4)
	params = append(params, categoryKey, string(cat), subCategoryKey, string(sub))

	for k, v := range keys {
		params = append(params, string(k))
		params = append(params, v)
	}

	return params
}

func logParamsToZeroParams(cat Category, sub SubCategory, keys map[ExtraKey]any) map[string]any {
	params := make(map[string]any, len(keys)+2)
	params[categoryKey] = string(cat)
	params[subCategoryKey] = string(sub)

	for k, v := range keys {
		params[string(k)] = v
	}

	return params
}
