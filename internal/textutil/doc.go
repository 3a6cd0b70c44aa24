// Package textutil provides the text shaping used for generated metadata:
// rune-safe truncation of NFC-normalized text, quote stripping, and fitting
// tag lists into a combined length budget.
package textutil
