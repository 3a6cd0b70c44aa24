// Package scripting implements the metadata stage: six concurrent text
// generation requests derived from the job prompt (script, title,
// description, tags, image search query, video search query).
//
// Each request runs under the shared retry policy. The stage fans in with an
// errgroup, so the first exhausted request cancels its siblings and fails the
// stage. Results are applied to the job only after every request succeeded.
//
// ParseTags turns the free-form tag answer into at most five single-word
// tags, accepting a JSON array first and falling back to list scraping.
package scripting
