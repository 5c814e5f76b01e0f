// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits source documents into overlapping passages and serves
// nearest-neighbour retrieval over their embeddings.
// Implements: prd002-retrieval (R1, R3);
//
//	docs/ARCHITECTURE § Indexing.
package chunk

import "strings"

// Boundary characters, strongest first. A chunk cut prefers a paragraph
// break, then a sentence ender, then whitespace.
var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '…': true,
}

// Split cuts text into chunks of at most size runes with the given rune
// overlap between consecutive chunks. Cuts prefer paragraph breaks, then
// sentence boundaries, then whitespace, searching back no further than half
// a chunk. Empty chunks are dropped.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = cutPoint(runes, start, end)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// cutPoint searches backwards from end for the best boundary, never before
// the midpoint of the chunk. Returns end unchanged when no boundary exists.
func cutPoint(runes []rune, start, end int) int {
	floor := start + (end-start)/2

	for i := end - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i > floor; i-- {
		if sentenceEnders[runes[i]] {
			return i + 1
		}
	}
	for i := end - 1; i > floor; i-- {
		if runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t' {
			return i + 1
		}
	}
	return end
}
