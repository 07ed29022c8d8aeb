// Package feeds reads the feeds file: an ordered list of single-entry
// mappings from feed name to its definition.
//
// JSON and YAML documents are accepted. Only the document shape is checked
// here; each definition is interpreted later, when its feed is fetched.
package feeds
