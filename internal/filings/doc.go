// Package filings locates extracted XBRL filings on disk.
//
// The retrieval job unpacks every filing into its own directory under a
// storage root. DirectoryLocator maps an entity identifier to one of those
// directories and resolves the instance document (by extension) and the
// optional Korean label linkbase (by file name marker) inside it.
//
// Directory selection is deliberately fuzzy: a directory whose name starts
// with the identifier wins, then one that contains it anywhere, and finally
// the last directory in lexicographic order. The final step can return a
// different entity's filing; it is logged at WARN, flagged on the returned
// FilingContext, and can be switched off with Options.AllowFallback.
package filings
