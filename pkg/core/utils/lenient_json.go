// Package utils parses loosely formatted JSON produced by language models and humans.
package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrUnparseable is returned when no parsing strategy yields a value of the target type.
var ErrUnparseable = errors.New("unparseable json")

// ExtractJSONObject returns the span from the first '{' to the last '}' in s.
// Model replies often wrap the object in prose or markdown fences.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// RepairJSON fixes common defects in model output: trailing commas, single quotes,
// unquoted keys, unclosed brackets, comments and code fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("repair json: %w", err)
	}
	return repaired, nil
}

// ParseHJSON converts Hjson (comments, unquoted keys, optional commas) to standard JSON.
func ParseHJSON(data string) (string, error) {
	var v interface{}
	if err := hjson.Unmarshal([]byte(data), &v); err != nil {
		return "", fmt.Errorf("parse hjson: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal hjson: %w", err)
	}
	return string(out), nil
}

// SmartParse decodes input into target. Strategies run from strictest to most lenient
// (strict JSON, Hjson, json-repair), each first on the extracted outer object and then
// on the raw input. It returns the JSON text that decoded successfully.
//
// json-repair rewrites numbers at float32 precision, so it only runs when Hjson cannot
// read the input (unclosed brackets and similar truncation).
func SmartParse(input string, target interface{}) (string, error) {
	candidates := []string{input}
	if obj, ok := ExtractJSONObject(input); ok && obj != input {
		candidates = []string{obj, input}
	}

	strategies := []func(string) (string, error){
		func(s string) (string, error) { return s, nil },
		ParseHJSON,
		RepairJSON,
	}

	for _, strategy := range strategies {
		for _, c := range candidates {
			converted, err := strategy(c)
			if err != nil {
				continue
			}
			if err := json.Unmarshal([]byte(converted), target); err == nil {
				return converted, nil
			}
		}
	}

	return "", fmt.Errorf("%w: all strategies failed", ErrUnparseable)
}
