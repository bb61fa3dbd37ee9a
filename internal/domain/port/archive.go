package port

import "context"

// ArtifactArchive uploads finished artifacts (video, preview) to external
// storage. Archiving is best-effort: failures are logged by the caller and
// never fail the operation.
type ArtifactArchive interface {
	StoreArtifact(ctx context.Context, objectKey string, filePath string, contentType string) error
}
