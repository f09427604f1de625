package loader

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// photoExtensions are tried in order; the first existing valid image wins.
var photoExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// copyVoicePhoto locates photo.<ext> under voiceDir, verifies it decodes as
// an image, and copies it to photosDir named by the voice id. It returns the
// public web path, or "" when the voice has no usable photo. Only
// filesystem-level copy failures are returned as errors; an undecodable
// photo file is skipped with a warning.
func copyVoicePhoto(voiceDir, voiceID, photosDir string) (string, error) {
	for _, ext := range photoExtensions {
		src := filepath.Join(voiceDir, "photo"+ext)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := validateImage(src); err != nil {
			log.Printf("[Loader] skipping photo %s: %v", src, err)
			continue
		}

		if err := os.MkdirAll(photosDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create photos directory: %w", err)
		}
		dst := filepath.Join(photosDir, voiceID+ext)
		if err := copyFile(src, dst); err != nil {
			return "", fmt.Errorf("failed to copy photo for %s: %w", voiceID, err)
		}
		return "/photos/" + voiceID + ext, nil
	}
	return "", nil
}

// validateImage checks that the file parses as a known image format
// (png, jpeg, or webp).
func validateImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("not a decodable image: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
