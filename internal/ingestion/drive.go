package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Divas-Gupta30/rag-agent/internal/processing"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	mimeGoogleDoc    = "application/vnd.google-apps.document"
	mimeGoogleSlides = "application/vnd.google-apps.presentation"
	mimePPTX         = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	mimeFolder       = "application/vnd.google-apps.folder"
)

var ErrDriveNotConfigured = errors.New("google drive credentials are not configured")

// DriveConfig holds the OAuth2 client and where the user token is kept.
type DriveConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenFile    string
}

func (c DriveConfig) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       []string{drive.DriveReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

func (c DriveConfig) validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrDriveNotConfigured
	}
	return nil
}

// DriveAuthURL is the consent page the user visits to obtain a code.
func DriveAuthURL(c DriveConfig) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}
	return c.oauth2Config().AuthCodeURL("state-token", oauth2.AccessTypeOffline), nil
}

// ExchangeDriveCode trades an authorization code for a token and stores it in
// c.TokenFile.
func ExchangeDriveCode(ctx context.Context, c DriveConfig, code string) error {
	if err := c.validate(); err != nil {
		return err
	}
	token, err := c.oauth2Config().Exchange(ctx, code)
	if err != nil {
		return errors.Wrap(err, "failed to exchange code")
	}
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return errors.Wrap(err, "create token dir")
	}
	f, err := os.OpenFile(c.TokenFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrap(err, "open token file")
	}
	defer f.Close()
	return errors.Wrap(json.NewEncoder(f).Encode(token), "write token")
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open token file (run `agent drive-auth` first)")
	}
	defer f.Close()
	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, errors.Wrap(err, "decode token file")
	}
	return &tok, nil
}

// DriveImporter downloads the supported files of a Drive folder so the local
// extractor can process them.
type DriveImporter struct {
	svc *drive.Service
}

func NewDriveImporter(ctx context.Context, c DriveConfig) (*DriveImporter, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	token, err := loadToken(c.TokenFile)
	if err != nil {
		return nil, err
	}
	client := c.oauth2Config().Client(ctx, token)
	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, errors.Wrap(err, "create drive service")
	}
	return &DriveImporter{svc: svc}, nil
}

// Download copies every supported file directly inside folderID into destDir.
// Google Docs are exported as text and Google Slides as pptx. Each File is
// named gdrive:<fileID>/<name> so re-imports replace earlier chunks no
// matter which directory they were downloaded to.
func (d *DriveImporter) Download(ctx context.Context, folderID, destDir string) ([]File, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create download dir")
	}

	var files []File
	err := d.svc.Files.List().
		Q(folderQuery(folderID)).
		Fields("nextPageToken, files(id, name, mimeType)").
		Context(ctx).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				file, ok, err := d.fetch(ctx, f, destDir)
				if err != nil {
					log.Warn().Err(err).Str("file", f.Name).Msg("skip drive file")
					continue
				}
				if ok {
					files = append(files, file)
				}
			}
			return nil
		})
	if err != nil {
		return nil, errors.Wrap(err, "list drive folder")
	}
	return files, nil
}

// folderQuery lists the live children of a folder. Drive query strings
// escape quotes and backslashes with a backslash.
func folderQuery(folderID string) string {
	id := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(folderID)
	return fmt.Sprintf("'%s' in parents and trashed = false", id)
}

// localName decides how a Drive entry is stored locally. exportMime is empty
// for files downloaded as they are; ok is false for entries that are skipped.
func localName(f *drive.File) (name, exportMime string, ok bool) {
	name = sanitizeName(f.Name)
	switch f.MimeType {
	case mimeFolder:
		return "", "", false
	case mimeGoogleDoc:
		name, exportMime = name+".txt", "text/plain"
	case mimeGoogleSlides:
		name, exportMime = name+".pptx", mimePPTX
	default:
		if !processing.Supported(name) {
			return "", "", false
		}
	}
	return name, exportMime, true
}

func driveFile(f *drive.File, destDir, name string) File {
	return File{
		// the id prefix keeps same-named files in one folder apart
		Path: filepath.Join(destDir, sanitizeName(f.Id)+"_"+name),
		Name: processing.SourceDrive + ":" + f.Id + "/" + name,
	}
}

func (d *DriveImporter) fetch(ctx context.Context, f *drive.File, destDir string) (File, bool, error) {
	name, exportMime, ok := localName(f)
	if !ok {
		return File{}, false, nil
	}
	var (
		resp *http.Response
		err  error
	)
	if exportMime != "" {
		resp, err = d.svc.Files.Export(f.Id, exportMime).Context(ctx).Download()
	} else {
		resp, err = d.svc.Files.Get(f.Id).Context(ctx).Download()
	}
	if err != nil {
		return File{}, false, errors.Wrap(err, "download")
	}
	defer resp.Body.Close()

	file := driveFile(f, destDir, name)
	out, err := os.Create(file.Path)
	if err != nil {
		return File{}, false, errors.Wrap(err, "create local copy")
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return File{}, false, errors.Wrap(err, "write local copy")
	}
	return file, true, nil
}

func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" {
		return "untitled"
	}
	return name
}
