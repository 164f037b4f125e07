package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxImageSize = 5 << 20

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// ImageStore keeps uploaded product images under Root/products. Root is
// served at /uploads.
type ImageStore struct {
	Root string
}

// Save writes the upload and returns its public path, e.g.
// "/uploads/products/<id>.jpg".
func (s ImageStore) Save(file *multipart.FileHeader) (string, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return "", fmt.Errorf("image file extension is required")
	}
	if _, ok := allowedImageExtensions[extension]; !ok {
		return "", fmt.Errorf("unsupported image type: %s", extension)
	}
	if file.Size > maxImageSize {
		return "", fmt.Errorf("image file too large (max 5MB)")
	}

	dir := filepath.Join(s.Root, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] failed to create directory %s: %v", dir, err)
		return "", err
	}

	filename := primitive.NewObjectID().Hex() + extension
	fullPath := filepath.Join(dir, filename)

	in, err := file.Open()
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		log.Printf("[UPLOAD] failed to save file %s: %v", fullPath, err)
		return "", err
	}

	log.Printf("[UPLOAD] saved %s", fullPath)
	return "/uploads/products/" + filename, nil
}

// Delete removes a file previously returned by Save. Paths that resolve
// outside Root/products are refused; a missing file is not an error.
func (s ImageStore) Delete(publicPath string) error {
	trimmed := strings.TrimSpace(publicPath)
	if trimmed == "" {
		return nil
	}

	cleanRel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(trimmed, "/")), "/")
	if !strings.HasPrefix(cleanRel, "uploads/products/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", publicPath)
	}

	base := filepath.Clean(filepath.Join(s.Root, "products"))
	target := filepath.Clean(filepath.Join(s.Root, filepath.FromSlash(strings.TrimPrefix(cleanRel, "uploads/"))))
	if !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload root: %s", publicPath)
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
