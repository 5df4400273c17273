package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAPIBase     = "https://www.googleapis.com/drive/v3"
	DefaultUploadBase  = "https://www.googleapis.com/upload/drive/v3"
	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	folderMimeType = "application/vnd.google-apps.folder"
	historySize    = 10
)

// ErrDrive wraps unexpected responses from the Drive API.
var ErrDrive = errors.New("drive request failed")

// File is a Drive file as listed in the backup history.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedTime time.Time `json:"createdTime"`
	Size        int64     `json:"size,string"`
}

// SizeLabel is the rounded size in KB, or "Unknown size".
func (f File) SizeLabel() string {
	if f.Size == 0 {
		return "Unknown size"
	}
	return fmt.Sprintf("%d KB", (f.Size+512)/1024)
}

// Drive is a minimal Drive v3 client. Every call takes the bearer token
// to use.
type Drive struct {
	Client      *http.Client
	APIBase     string
	UploadBase  string
	UserInfoURL string
}

// NewDrive creates a Drive client for the public Google endpoints.
func NewDrive(client *http.Client) *Drive {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Drive{
		Client:      client,
		APIBase:     DefaultAPIBase,
		UploadBase:  DefaultUploadBase,
		UserInfoURL: DefaultUserInfoURL,
	}
}

func (d *Drive) do(ctx context.Context, token, method, target, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s: %s", ErrDrive, method, req.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*v, err = io.ReadAll(resp.Body)
		return err
	default:
		return json.NewDecoder(resp.Body).Decode(out)
	}
}

func (d *Drive) query(q, fields string, extra url.Values) string {
	v := url.Values{}
	v.Set("q", q)
	v.Set("fields", fields)
	for k, vals := range extra {
		v[k] = vals
	}
	return d.APIBase + "/files?" + v.Encode()
}

// FindFolder looks up a non-trashed folder by exact name.
func (d *Drive) FindFolder(ctx context.Context, token, name string) (string, bool, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQuery(name), folderMimeType)
	var result struct {
		Files []File `json:"files"`
	}
	if err := d.do(ctx, token, http.MethodGet, d.query(q, "files(id,name)", nil), "", nil, &result); err != nil {
		return "", false, err
	}
	if len(result.Files) == 0 {
		return "", false, nil
	}
	return result.Files[0].ID, true, nil
}

// CreateFolder creates a folder at the Drive root.
func (d *Drive) CreateFolder(ctx context.Context, token, name string) (string, error) {
	body, err := json.Marshal(map[string]string{"name": name, "mimeType": folderMimeType})
	if err != nil {
		return "", err
	}
	var created File
	if err := d.do(ctx, token, http.MethodPost, d.APIBase+"/files", "application/json", bytes.NewReader(body), &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create folder returned no id", ErrDrive)
	}
	return created.ID, nil
}

// EnsureFolder returns the folder's id, creating it when missing.
func (d *Drive) EnsureFolder(ctx context.Context, token, name string) (string, error) {
	id, ok, err := d.FindFolder(ctx, token, name)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}
	return d.CreateFolder(ctx, token, name)
}

// Upload stores data as a JSON file inside folderID using a multipart
// upload.
func (d *Drive) Upload(ctx context.Context, token, folderID, name, description string, data []byte) (File, error) {
	meta, err := json.Marshal(map[string]any{
		"name":        name,
		"parents":     []string{folderID},
		"description": description,
	})
	if err != nil {
		return File{}, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.SetBoundary("homescreen-" + uuid.NewString()); err != nil {
		return File{}, err
	}
	for _, part := range [][]byte{meta, data} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
		if err != nil {
			return File{}, err
		}
		if _, err := w.Write(part); err != nil {
			return File{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return File{}, err
	}

	target := d.UploadBase + "/files?uploadType=multipart&fields=id,name,createdTime,size"
	contentType := "multipart/related; boundary=" + mw.Boundary()

	var file File
	if err := d.do(ctx, token, http.MethodPost, target, contentType, &body, &file); err != nil {
		return File{}, err
	}
	return file, nil
}

// List returns the newest backups in folderID, newest first.
func (d *Drive) List(ctx context.Context, token, folderID string) ([]File, error) {
	q := fmt.Sprintf("'%s' in parents and name contains '%s' and trashed=false", escapeQuery(folderID), FilePrefix)
	extra := url.Values{
		"orderBy":  {"createdTime desc"},
		"pageSize": {fmt.Sprint(historySize)},
	}
	var result struct {
		Files []File `json:"files"`
	}
	if err := d.do(ctx, token, http.MethodGet, d.query(q, "files(id,name,createdTime,size)", extra), "", nil, &result); err != nil {
		return nil, err
	}
	if result.Files == nil {
		result.Files = []File{}
	}
	return result.Files, nil
}

// Download returns the content of file id.
func (d *Drive) Download(ctx context.Context, token, id string) ([]byte, error) {
	var data []byte
	target := d.APIBase + "/files/" + url.PathEscape(id) + "?alt=media"
	if err := d.do(ctx, token, http.MethodGet, target, "", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// UserEmail returns the email of the token's owner.
func (d *Drive) UserEmail(ctx context.Context, token string) (string, error) {
	var info struct {
		Email string `json:"email"`
	}
	if err := d.do(ctx, token, http.MethodGet, d.UserInfoURL, "", nil, &info); err != nil {
		return "", err
	}
	return info.Email, nil
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
