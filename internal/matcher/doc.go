// Package matcher implements the keyword match strategies of a search.
//
// A Strategy is selected once per search from the options' method code:
//
//   - default: case-sensitive substring of the file stem, or of the file
//     contents when content search is enabled
//   - regex: like default, using a compiled regular expression
//   - Damerau-Levenshtein: edit distance between keyword and name, matching
//     when the distance is at or below the threshold
//   - Jaccard: similarity of the character sets of keyword and name,
//     matching when the similarity is at or above the threshold
//
// Every strategy applies the search scope first, so a files-only search never
// reports a directory.
//
// Content matching only reads regular files that look like text (detected by
// content sniffing, with the extension as fallback), are no larger than the
// configured limit and decode as UTF-8. Anything else simply does not match
// on content.
//
// Fuzzy thresholds come from a small YAML file that is re-read at the start
// of every search:
//
//	- name: Damerau-Levenshtein
//	  threshold: 2
//	- name: Jaccard-Similarity
//	  threshold: 0.5
package matcher
