package ads

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	videosDir      = "videos"
	mediaURLPrefix = "/ads/"
)

// AllowedVideoExtensions lists accepted upload extensions, lowercase and without the dot.
var AllowedVideoExtensions = map[string]bool{
	"mp4":  true,
	"webm": true,
	"ogg":  true,
}

// MediaStore keeps uploaded videos on local disk under baseDir/videos.
type MediaStore struct {
	baseDir string
}

func NewMediaStore(baseDir string) *MediaStore {
	return &MediaStore{baseDir: baseDir}
}

func (m *MediaStore) BaseDir() string { return m.baseDir }

// Save writes r to a new timestamped file and returns the stored filename.
func (m *MediaStore) Save(original string, r io.Reader, now time.Time) (string, error) {
	dir := filepath.Join(m.baseDir, videosDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	// The uuid fragment keeps same-second uploads of one name apart.
	filename := fmt.Sprintf("%s_%s_%s", now.UTC().Format("20060102_150405"), uuid.NewString()[:8], sanitizeName(original))
	absPath := filepath.Join(dir, filename)

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("write media file: %w", err)
	}
	return filename, nil
}

func (m *MediaStore) Remove(filename string) error {
	return os.Remove(filepath.Join(m.baseDir, videosDir, filepath.Base(filename)))
}

// Resolve maps a request path under /ads/ to a file inside baseDir. ok is false for paths that
// would escape it.
func (m *MediaStore) Resolve(requestPath string) (string, bool) {
	rel := strings.TrimPrefix(requestPath, "/")
	if rel == "" {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", false
		}
	}
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", false
	}
	return filepath.Join(m.baseDir, filepath.FromSlash(clean)), true
}

// VideoURL is the public location of a stored video.
func VideoURL(filename string) string {
	return mediaURLPrefix + videosDir + "/" + filename
}

func videoExtension(filename string) (string, bool) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", false
	}
	ext := strings.ToLower(filename[i+1:])
	return ext, AllowedVideoExtensions[ext]
}

// sanitizeName keeps ASCII letters, digits, dash, underscore and the extension dot.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))

	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, base)
	base = strings.Trim(base, "_")
	if len(base) > 80 {
		base = base[:80]
	}
	if base == "" {
		base = "video"
	}
	return base + ext
}
