package models

import (
	"encoding/json"
	"regexp"
	"strings"
)

// tagSeparator matches the ASCII comma, the full-width comma and the
// enumeration comma used in free-text multi-select answers.
var tagSeparator = regexp.MustCompile(`[,，、]`)

// EncodeTags serializes a multi-select answer for storage.
// A nil slice encodes as "[]".
func EncodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeTags is the inverse of EncodeTags. Empty, malformed or non-array
// input yields an empty, non-nil slice.
func DecodeTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// DecodeTagsPtr decodes a nullable column.
func DecodeTagsPtr(raw *string) []string {
	if raw == nil {
		return []string{}
	}
	return DecodeTags(*raw)
}

// SplitTags splits a delimiter-separated answer into normalized tags.
func SplitTags(s string) []string {
	return NormalizeTags(tagSeparator.Split(s, -1))
}

// NormalizeTags trims every item and drops the empty ones, keeping order.
func NormalizeTags(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
