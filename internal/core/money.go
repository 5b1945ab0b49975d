// Package core provides the domain model for co-owning a boat.
//
// This file contains functions for parsing kroner amounts typed by people
// and formatting them back the way Norwegian users expect to read them.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// ParseAmountToOre converts a kroner string to øre with half-up rounding.
//
// It accepts dot (12.34) and comma (12,34) decimal separators, space or
// non-breaking space thousand separators (750 000) and an optional "kr"
// suffix. Zero is allowed since a co-owner may contribute nothing upfront.
// Negative values are rejected.
//
// Examples:
//
//	ParseAmountToOre("12.34")      -> 1234, nil
//	ParseAmountToOre("750 000 kr") -> 75000000, nil
//	ParseAmountToOre("12,345")     -> 1235, nil (rounds up)
func ParseAmountToOre(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "kr"))
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, half-up on the third
	var fracOre int64
	if len(fracPart) > 0 {
		fracOre = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracOre += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracOre++
			}
		}
	}
	if iv > (math.MaxInt64-fracOre)/100 {
		return 0, ErrInvalidAmount
	}
	return iv*100 + fracOre, nil
}

// ParseKroner parses a kroner amount for use in calculations.
func ParseKroner(s string) (float64, error) {
	ore, err := ParseAmountToOre(s)
	if err != nil {
		return 0, err
	}
	return float64(ore) / 100.0, nil
}

// FormatKroner renders a rounded amount with space thousand separators, e.g. "750 000 kr".
func FormatKroner(v float64) string {
	return humanize.FormatFloat("# ###.", v) + " kr"
}
