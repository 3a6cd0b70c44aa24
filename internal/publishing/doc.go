// Package publishing uploads the composed video and records the platform id
// and watch URL on the job. Metadata is clipped to the platform limits before
// upload.
package publishing
