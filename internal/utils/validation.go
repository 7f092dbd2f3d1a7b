package utils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var validCityPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z _-]*$`)

// ValidateCity checks that a city path segment is a plausible name. Whether the
// city is supported is decided later against the loaded datasets.
func ValidateCity(city string) error {
	if city == "" {
		return errors.New("city cannot be empty")
	}
	if len(city) > 64 {
		return errors.New("city too long (max 64 characters)")
	}
	if !validCityPattern.MatchString(city) {
		return errors.New("city contains invalid characters")
	}
	return nil
}

// ParseIntValue parses a decimal integer, recording a field error under key
// when it is missing or malformed.
func ParseIntValue(raw, key string, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Missing required field %q.", key))
		return 0, fieldErrors
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return 0, fieldErrors
	}
	return n, fieldErrors
}

// ParseIntParam is ParseIntValue for a query parameter.
func ParseIntParam(params url.Values, key string, fieldErrors map[string][]string) (int, map[string][]string) {
	return ParseIntValue(params.Get(key), key, fieldErrors)
}
