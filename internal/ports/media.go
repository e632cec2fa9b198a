package ports

import "context"

// MediaStore owns on-disk media files referenced (not embedded) by visit
// rows.
type MediaStore interface {
	// WriteFile decodes a base64 payload (optionally carrying a data-URI
	// prefix) into a uniquely named file and returns its path.
	WriteFile(ctx context.Context, base64Payload string) (string, error)
	// DeleteFiles removes the given paths best-effort: missing files are not
	// errors and individual failures never abort the rest.
	DeleteFiles(ctx context.Context, paths []string)
}
