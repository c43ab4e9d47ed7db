// Package xbrl extracts the separate-statement balance sheet from DART
// XBRL filings.
//
// An instance document is parsed into a small element tree that keeps
// namespace prefixes as written, so elements are matched by their literal
// qualified names ("ifrs-full:CurrentAssets"). Facts on the allow-list are
// kept when their contextRef carries the SeparateMember marker. Captions
// come from the Korean label linkbase when present; values are scaled by
// their decimals attribute and grouped with thousands separators.
package xbrl
