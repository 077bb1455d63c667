// Package output renders command results.
//
// A Report carries the raw result for JSON output plus a presentation for
// people: a title, an optional table and styled lines. Three renderers
// exist. The terminal renderer styles lines with the lipgloss styles
// defined in styles.yaml and draws tables with pterm. The text renderer
// prints the same content without escape codes. The JSON renderer encodes
// the raw result.
//
// Style names are semantic: Title, Header, Success, Info, Warning,
// Critical, Muted, ModID, Version.
package output
