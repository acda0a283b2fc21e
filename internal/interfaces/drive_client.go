package interfaces

import (
	"context"
)

// FileInfo describes a remote Drive file
type FileInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// SourceFetcher downloads a remote source file for local processing
type SourceFetcher interface {
	// DownloadToTemp fetches the file into a temporary local file and
	// returns its path plus the original remote file name. Google Sheets
	// are exported as CSV; regular files download as-is. The caller owns
	// cleanup of the returned path.
	DownloadToTemp(ctx context.Context, fileID string) (path string, originalName string, err error)
}

// Uploader stores a rendered slip in the remote destination folder
type Uploader interface {
	// UploadSlip uploads the local PDF under a date folder inside
	// folderID, named after the employee, and returns the remote file ID
	UploadSlip(ctx context.Context, localPath, employeeID, employeeName, folderID string) (string, error)

	// UploadFile uploads an arbitrary local file under a date folder
	// inside folderID with the given name and returns the remote file ID
	UploadFile(ctx context.Context, localPath, fileName, folderID string) (string, error)

	// FileLink makes the file readable by anyone with the link and returns
	// a shareable URL. A constructed URL is returned when the permission
	// call fails; link generation is best-effort.
	FileLink(ctx context.Context, fileID string) string
}
