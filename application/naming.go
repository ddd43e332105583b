package application

import (
	"path"
	"regexp"
	"sort"
	"strings"
)

var (
	wordBoundary    = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerUpperSplit = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

func CamelToSnake(name string) string {
	snake := wordBoundary.ReplaceAllString(name, "${1}_${2}")
	snake = lowerUpperSplit.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}

// PropertyName is the name an object is exposed under: the last path
// segment with dashes replaced by underscores.
func PropertyName(objectName string) string {
	return strings.Replace(path.Base(objectName), "-", "_", -1)
}

func EnumConstantName(title, value string) string {
	return strings.ToUpper(CamelToSnake(title)) + "_" + strings.ToUpper(value)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
