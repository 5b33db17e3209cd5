package storage

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/pkg/helpers"
)

// each upload gets a fresh object name, so stored avatars never change
const avatarCacheControl = "public, max-age=31536000, immutable"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// AvatarStorage uploads profile pictures to avatars/<account id>/<uuid><ext>.
type AvatarStorage struct {
	client *gcs.Client
	bucket string
}

var _ application.AvatarStorage = (*AvatarStorage)(nil)

func NewAvatarStorage(client *gcs.Client, bucket string) *AvatarStorage {
	return &AvatarStorage{client: client, bucket: bucket}
}

// ObjectPath returns where an avatar for accountID named filename is stored.
func ObjectPath(accountID int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("avatars", strconv.FormatInt(accountID, 10), uuid.NewString()+ext)
}

func (s *AvatarStorage) Upload(ctx context.Context, accountID int64, r io.Reader, filename, contentType string) (string, error) {
	if !allowedImageTypes[contentType] {
		return "", application.ErrUnsupportedImage
	}
	return helpers.UploadObject(ctx, s.client, s.bucket, ObjectPath(accountID, filename), helpers.ObjectMeta{
		ContentType:  contentType,
		CacheControl: avatarCacheControl,
	}, r)
}
