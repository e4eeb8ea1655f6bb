// Package hocr reads pre-computed OCR results in the hOCR format and
// answers region queries against them.
//
// hOCR is the HTML-based output of Tesseract, OCRmyPDF and most OCR
// services. Each word carries a bounding box and a confidence in its title
// attribute ("bbox 100 200 300 400; x_wconf 95"), which is all that is
// needed to read the text of a selected region without running an engine.
//
// The parser flattens the hOCR hierarchy (page, area, paragraph, line,
// word) into pages of lines of words, in document order.
//
// Key Types:
//
// - Document: parsed hOCR file, one or more pages
// - Page: page bounding box and its lines
// - Line, Word: recognized text with bounding boxes
// - Recognizer: ocr.Recognizer over a Document
//
// Main Functions:
//
// - Parse / ParseFile: read hOCR into a Document
// - Page.TextIn: text and mean confidence of the words inside a region
package hocr
