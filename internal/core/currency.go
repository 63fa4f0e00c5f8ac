// Package core holds the domain model of the expense tracker.
//
// This file contains the pure currency helpers: conversion into the
// accounting currency and display formatting. Neither touches storage,
// so both are testable in isolation.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ConvertToRSD converts an amount entered in the given currency into the
// accounting currency using the supplied rates. RSD passes through
// unchanged; other currencies are multiplied by their rate and rounded to
// the nearest whole dinar. No fractional minor units are tracked.
func ConvertToRSD(amount float64, currency Currency, rates CurrencyRates) float64 {
	switch currency {
	case EUR:
		return math.Round(amount * rates.EUR)
	case RUB:
		return math.Round(amount * rates.RUB)
	default:
		return amount
	}
}

// Symbol returns the display symbol for a currency.
func (c Currency) Symbol() string {
	switch c {
	case EUR:
		return "€"
	case RUB:
		return "₽"
	default:
		return "дин."
	}
}

// FormatCurrency renders an amount with thousands grouping, a decimal
// comma and the currency symbol, e.g. "1 234,50 дин.".
func FormatCurrency(amount float64, currency Currency) string {
	return formatAmount(amount) + " " + currency.Symbol()
}

func formatAmount(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatFloat(amount, 'f', -1, 64)
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	// Group integer digits in threes.
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if hasFrac {
		if len(fracPart) > 2 {
			fracPart = fracPart[:2]
		}
		out += "," + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
