// Package types provides shared type definitions for the filescout search engine.
//
// These are plain value types copied freely between goroutines: the options
// bundle describing one search, the result records streamed to callers, and
// the snapshot describing an in-flight search process.
//
// # Search Options
//
// SearchOptions mirrors the option object sent by the desktop front-end, so
// its JSON field names are the front-end's camelCase names:
//
//	opts := types.DefaultSearchOptions()
//	opts.SearchScope = types.ScopeFilesOnly
//	opts.CustomPropertyUse = true
//	opts.CustomFileSizeUse = true
//	opts.SizeMin, opts.SizeMax = 0, 100
//
// SearchOptions is comparable with ==. The result cache relies on this: a
// cached result set is only reused when both the keyword and the complete
// options value are equal.
//
// Scope and method selectors keep the front-end's string codes:
//
//	ScopeAll "0", ScopeFilesOnly "1", ScopeDirsOnly "2"
//	MethodDefault "0", MethodRegex "1",
//	MethodDamerauLevenshtein "2", MethodJaccard "3"
//
// # Results
//
// FileItem carries a display name and an absolute path:
//
//	item := types.NewFileItem("/home/me/notes/a.txt")
//	// item.Name == "a.txt"
//
// ProcessInfo is the snapshot returned when a search starts; its ID is the
// token used to cancel the search.
package types
