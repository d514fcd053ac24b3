package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostsDir is where post images live under the media root.
const PostsDir = "posts"

// DefaultMaxUploadSize caps an image when no limit is configured.
const DefaultMaxUploadSize int64 = 5 << 20 // 5 Megabyte

var ErrInvalidImage = errors.New("invalid image")

var allowedImageTypes = map[string][]string{
	"image/gif":  {".gif"},
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
}

// Upload is an image file received from a form.
type Upload struct {
	Filename string
	File     io.ReadSeeker

	contentType string
}

// ImageStore validates uploaded images and keeps them on disk below root.
type ImageStore struct {
	root          string
	maxUploadSize int64
	logger        *zap.Logger
}

func NewImageStore(root string, maxUploadSize int64, logger *zap.Logger) *ImageStore {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &ImageStore{
		root:          root,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Root is the media directory served to clients.
func (s *ImageStore) Root() string {
	return s.root
}

// Save validates the upload and writes it under posts/, returning the path
// relative to the media root.
func (s *ImageStore) Save(ctx context.Context, img *Upload) (string, error) {
	err := runImageValFns(img,
		s.extensionValid,
		s.contentTypeValid,
		s.contentTypeExtensionMatch,
		s.belowMaxSize,
	)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(img.Filename))
	rel := path.Join(PostsDir, uuid.NewString()+ext)
	dst := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(out, img.File); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close image file: %w", err)
	}

	s.logger.Debug("Stored image", zap.String("path", rel), zap.String("content_type", img.contentType))
	return rel, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *ImageStore) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	clean := path.Clean("/" + rel)[1:]
	if !strings.HasPrefix(clean, PostsDir+"/") {
		return fmt.Errorf("refusing to delete %q outside %s/", rel, PostsDir)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

type imageValFn func(img *Upload) error

func runImageValFns(img *Upload, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

func (s *ImageStore) extensionValid(img *Upload) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	for _, exts := range allowedImageTypes {
		for _, allowed := range exts {
			if ext == allowed {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s must be a .gif, .jpg, .jpeg or .png file", ErrInvalidImage, img.Filename)
}

func (s *ImageStore) contentTypeValid(img *Upload) error {
	buffer := make([]byte, 512)
	n, err := img.File.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if err = resetReaderPosition(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer[:n])
	if _, ok := allowedImageTypes[contentType]; !ok {
		return fmt.Errorf("%w: upload a valid image, the file you uploaded was either not an image or a corrupted image", ErrInvalidImage)
	}
	img.contentType = contentType
	return nil
}

func (s *ImageStore) contentTypeExtensionMatch(img *Upload) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	for _, allowed := range allowedImageTypes[img.contentType] {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: content-type %s does not match extension %s", ErrInvalidImage, img.contentType, ext)
}

func (s *ImageStore) belowMaxSize(img *Upload) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetReaderPosition(img); err != nil {
		return err
	}
	if size > s.maxUploadSize {
		return fmt.Errorf("%w: %s exceeds upload size limit of %d bytes", ErrInvalidImage, img.Filename, s.maxUploadSize)
	}
	return nil
}

func resetReaderPosition(img *Upload) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}
