// Package acquisition implements the media acquisition stage. Four branches
// run concurrently once metadata exists:
//
//   - narration: text-to-speech of the script
//   - clips: stock footage search for the video query (at least one required)
//   - thumbnail: a rendered title card, falling back to an illustration search
//   - music: best-effort background track for the first tag
//
// Every remote call runs under the retry policy and every result is stored
// in the blob store as soon as it arrives. Each branch writes only its own
// artifact field on the job.
package acquisition
