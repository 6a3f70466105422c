package filemgr

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	productPicDir = "static/productpic"
	thumbWidth    = 300
)

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// SaveProductImage stores an uploaded product image and a 300px-wide
// thumbnail next to it. Returns the generated image name.
func SaveProductImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if !supportedImageTypes[header.Header.Get("Content-Type")] {
		return "", fmt.Errorf("unsupported image type %q", header.Header.Get("Content-Type"))
	}

	img, err := imaging.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if err := os.MkdirAll(productPicDir, 0755); err != nil {
		return "", err
	}

	name := uuid.New().String() + ".jpg"
	originalPath := filepath.Join(productPicDir, name)
	thumbPath := filepath.Join(productPicDir, "thumb_"+name)

	if err := imaging.Save(img, originalPath); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos) // maintain aspect ratio
	if err := imaging.Save(thumb, thumbPath); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}

	return name, nil
}
