// Package drive provides a Google Drive v3 client for fetching the source
// spreadsheet and storing rendered slips. Google Sheets sources are
// exported as CSV; everything else moves as raw bytes.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/interfaces"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Drive v3 API base URL.
	DefaultBaseURL = "https://www.googleapis.com/drive/v3"

	// DefaultUploadURL is the Drive v3 upload endpoint base URL.
	DefaultUploadURL = "https://www.googleapis.com/upload/drive/v3"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateInterval is the default minimum spacing between API
	// requests. Drive enforces per-user quotas; one request per second
	// keeps a full batch run well inside them.
	DefaultRateInterval = time.Second

	mimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	mimeFolder      = "application/vnd.google-apps.folder"
	mimeCSVExport   = "text/csv"
)

// driveScope grants read/write file access for the service account.
const driveScope = "https://www.googleapis.com/auth/drive"

// Client is a Google Drive API client.
type Client struct {
	baseURL    string
	uploadURL  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	now        func() time.Time
}

// Compile-time assertions
var (
	_ interfaces.SourceFetcher = (*Client)(nil)
	_ interfaces.Uploader      = (*Client)(nil)
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithUploadURL sets a custom upload base URL.
func WithUploadURL(uploadURL string) ClientOption {
	return func(c *Client) {
		c.uploadURL = uploadURL
	}
}

// WithHTTPClient sets a custom HTTP client, bypassing service-account
// authentication.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateInterval sets the minimum spacing between API requests.
func WithRateInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval > 0 {
			c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if c.httpClient != nil && timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a Drive client authenticated with a service account
// key file.
func NewClient(credentialsFile string, opts ...ClientOption) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, driveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	httpClient := conf.Client(context.Background())
	httpClient.Timeout = DefaultTimeout

	c := &Client{
		baseURL:    DefaultBaseURL,
		uploadURL:  DefaultUploadURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(DefaultRateInterval), 1),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = common.GetLogger()
	}

	return c, nil
}

// newTestClient builds an unauthenticated client for tests.
func newTestClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		uploadURL:  DefaultUploadURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = common.GetLogger()
	}
	return c
}

// APIError represents an error response from the Drive API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("drive API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// do performs an API request after waiting for the rate limiter. The caller
// owns the response body.
func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug().Str("method", method).Str("url", rawURL).Msg("Drive API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			Endpoint:   rawURL,
		}
	}

	return resp, nil
}

// getJSON performs a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, rawURL string, result interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetFileInfo fetches name and MIME type for a Drive file.
func (c *Client) GetFileInfo(ctx context.Context, fileID string) (*interfaces.FileInfo, error) {
	var info interfaces.FileInfo
	u := fmt.Sprintf("%s/files/%s?fields=id,name,mimeType", c.baseURL, url.PathEscape(fileID))
	if err := c.getJSON(ctx, u, &info); err != nil {
		return nil, fmt.Errorf("failed to get file info for %s: %w", fileID, err)
	}
	return &info, nil
}

// DownloadToTemp fetches a Drive file into a temporary local file. Google
// Sheets are exported as CSV; other files download unchanged. The caller
// owns cleanup of the returned path.
func (c *Client) DownloadToTemp(ctx context.Context, fileID string) (string, string, error) {
	info, err := c.GetFileInfo(ctx, fileID)
	if err != nil {
		return "", "", err
	}

	var downloadURL, suffix string
	if info.MimeType == mimeGoogleSheet {
		downloadURL = fmt.Sprintf("%s/files/%s/export?mimeType=%s", c.baseURL, url.PathEscape(fileID), url.QueryEscape(mimeCSVExport))
		suffix = ".csv"
	} else {
		downloadURL = fmt.Sprintf("%s/files/%s?alt=media", c.baseURL, url.PathEscape(fileID))
		suffix = filepath.Ext(info.Name)
		if suffix == "" {
			suffix = ".bin"
		}
	}

	resp, err := c.do(ctx, http.MethodGet, downloadURL, nil, "")
	if err != nil {
		return "", "", fmt.Errorf("failed to download %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp("", "stipendium-source-*"+suffix)
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("failed to write downloaded content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("failed to close temp file: %w", err)
	}

	c.logger.Info().
		Str("file_id", fileID).
		Str("name", info.Name).
		Str("mime_type", info.MimeType).
		Str("path", tmp.Name()).
		Msg("Downloaded source file")

	return tmp.Name(), info.Name, nil
}

type fileResource struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name,omitempty"`
	MimeType string   `json:"mimeType,omitempty"`
	Parents  []string `json:"parents,omitempty"`
}

type fileListResponse struct {
	Files []fileResource `json:"files"`
}

// findFolder returns the ID of an existing folder with the given name, or
// "" when no such folder exists.
func (c *Client) findFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", name, mimeFolder)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}

	u := fmt.Sprintf("%s/files?q=%s&fields=files(id,name)", c.baseURL, url.QueryEscape(query))

	var list fileListResponse
	if err := c.getJSON(ctx, u, &list); err != nil {
		return "", fmt.Errorf("failed to search for folder %s: %w", name, err)
	}

	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].ID, nil
}

// createFolder creates a folder and returns its ID.
func (c *Client) createFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := fileResource{
		Name:     name,
		MimeType: mimeFolder,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	body, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal folder metadata: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/files", bytes.NewReader(body), "application/json")
	if err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", name, err)
	}
	defer resp.Body.Close()

	var created fileResource
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode folder response: %w", err)
	}

	c.logger.Info().Str("name", name).Str("folder_id", created.ID).Msg("Created Drive folder")
	return created.ID, nil
}

// dateFolder returns the ID of the current YYYY-MM folder under parentID,
// creating it when absent.
func (c *Client) dateFolder(ctx context.Context, parentID string) (string, error) {
	name := c.now().Format("2006-01")

	id, err := c.findFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return c.createFolder(ctx, name, parentID)
}

// UploadFile uploads a local file under the current date folder inside
// folderID and returns the remote file ID.
func (c *Client) UploadFile(ctx context.Context, localPath, fileName, folderID string) (string, error) {
	dateFolderID, err := c.dateFolder(ctx, folderID)
	if err != nil {
		return "", err
	}
	return c.uploadMultipart(ctx, localPath, fileName, dateFolderID)
}

// uploadMultipart performs a multipart/related upload with metadata and
// content in one request.
func (c *Client) uploadMultipart(ctx context.Context, localPath, fileName, parentID string) (string, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read local file: %w", err)
	}

	meta := fileResource{Name: fileName}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal file metadata: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create metadata part: %w", err)
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return "", fmt.Errorf("failed to write metadata part: %w", err)
	}

	contentPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/octet-stream"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create content part: %w", err)
	}
	if _, err := contentPart.Write(content); err != nil {
		return "", fmt.Errorf("failed to write content part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload body: %w", err)
	}

	u := c.uploadURL + "/files?uploadType=multipart&fields=id"
	contentType := "multipart/related; boundary=" + writer.Boundary()

	resp, err := c.do(ctx, http.MethodPost, u, &buf, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", fileName, err)
	}
	defer resp.Body.Close()

	var uploaded fileResource
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	c.logger.Info().
		Str("name", fileName).
		Str("file_id", uploaded.ID).
		Int("size", len(content)).
		Msg("Uploaded file to Drive")

	return uploaded.ID, nil
}

// UploadSlip uploads a rendered slip under the current date folder, named
// Payroll_<YYYY-MM>_<employee id>_<safe employee name>.pdf.
func (c *Client) UploadSlip(ctx context.Context, localPath, employeeID, employeeName, folderID string) (string, error) {
	fileName := fmt.Sprintf("Payroll_%s_%s_%s.pdf", c.now().Format("2006-01"), employeeID, safeFileName(employeeName))
	return c.UploadFile(ctx, localPath, fileName, folderID)
}

// FileLink makes the file readable by anyone with the link and returns a
// shareable URL. Link generation is best-effort: on any API failure a
// constructed viewer URL comes back instead.
func (c *Client) FileLink(ctx context.Context, fileID string) string {
	fallback := fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID)

	permBody := []byte(`{"role":"reader","type":"anyone"}`)
	permURL := fmt.Sprintf("%s/files/%s/permissions", c.baseURL, url.PathEscape(fileID))
	if resp, err := c.do(ctx, http.MethodPost, permURL, bytes.NewReader(permBody), "application/json"); err != nil {
		c.logger.Warn().Str("file_id", fileID).Err(err).Msg("Failed to set file permission, using constructed link")
		return fallback
	} else {
		resp.Body.Close()
	}

	var info struct {
		WebViewLink string `json:"webViewLink"`
	}
	u := fmt.Sprintf("%s/files/%s?fields=webViewLink", c.baseURL, url.PathEscape(fileID))
	if err := c.getJSON(ctx, u, &info); err != nil || info.WebViewLink == "" {
		return fallback
	}
	return info.WebViewLink
}

// safeFileName keeps letters, digits, spaces, hyphens and underscores
func safeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
