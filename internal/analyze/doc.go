// Package analyze decides, per discovered file, whether it is moved or
// skipped and where a moved file lands.
//
// The skip policy is evaluated in a fixed order (folder, already organized,
// excluded extension, too recent) and the first match wins. Files that pass
// get the folder-structure template expanded from their date field and, when
// the template asks for it, their content category.
//
// Whether a path is "already organized" is judged by a string match against
// the configured destination root; a file whose own name happens to contain
// the root string can be misclassified. This mirrors the shipped behaviour
// and is kept as a known ambiguity.
package analyze
