// Package coords turns loosely formatted OCR text into numeric coordinate
// pairs.
//
// Scanned survey plans print coordinates in many ways: labelled
// ("X: 594368.50 Y: 1843413.04"), with units, with French grouped
// thousands ("594 368,50"), on separate lines or inside brackets. Extract
// tries a fixed list of patterns from the most to the least specific and
// keeps the first pair whose values are both larger than 1000. Normalize
// resolves the decimal/thousands ambiguity of each captured value.
package coords
