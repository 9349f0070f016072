package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum photo size (10MB)
	maxFileSize = 10 * 1024 * 1024
	// Thumbnail width in pixels; height keeps aspect ratio
	thumbnailWidth = 320
)

// Allowed photo extensions for ritual step evidence
var allowedPhotoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	// Remove any path components
	filename = filepath.Base(filename)
	// Remove any non-alphanumeric characters except for dots and hyphens
	reg := regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	return reg.ReplaceAllString(filename, "")
}

// ValidatePhotoFile checks the extension and size of an uploaded ritual photo
func ValidatePhotoFile(filename string, size int) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPhotoExts[ext] {
		return fmt.Errorf("invalid photo extension: %s", ext)
	}
	if size > maxFileSize {
		return fmt.Errorf("file size %d exceeds maximum of %d bytes", size, maxFileSize)
	}
	return nil
}

// SaveRitualPhoto stores a decoded ritual step photo under
// uploads/rituals/<requestID>/ and writes a thumbnail next to it.
// Returns the public URLs of the photo and its thumbnail.
func SaveRitualPhoto(data []byte, requestID, originalName string) (string, string, error) {
	if originalName == "" {
		originalName = "photo.jpg"
	}
	if err := ValidatePhotoFile(originalName, len(data)); err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(cleanFilename(originalName)))
	if ext == "" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%d_%s%s", time.Now().Unix(), uuid.New().String(), ext)

	dir := filepath.Join(uploadBaseDir, "rituals", requestID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	photoPath := filepath.Join(dir, name)
	if err := os.WriteFile(photoPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write photo: %w", err)
	}

	photoURL := fmt.Sprintf("%s/rituals/%s/%s", baseURL, requestID, name)

	thumbURL, err := writeThumbnail(data, dir, name)
	if err != nil {
		// The full-size photo is already stored; serve it without a thumbnail
		return photoURL, "", nil
	}
	thumbURL = fmt.Sprintf("%s/rituals/%s/%s", baseURL, requestID, thumbURL)

	return photoURL, thumbURL, nil
}

// writeThumbnail decodes the photo and writes a resized JPEG copy.
// Returns the thumbnail filename.
func writeThumbnail(data []byte, dir, name string) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode photo: %w", err)
	}

	resized := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	thumbName := "thumb_" + strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	out, err := os.Create(filepath.Join(dir, thumbName))
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return thumbName, nil
}
