package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"citizenpress/internal/models"
)

// sniffLen matches the amount of data mimetype inspects by default.
const sniffLen = 3072

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrEmptyFile       = errors.New("file is empty")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
	".pdf":  true,
}

// Upload is an incoming file that passed type and size checks.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Kind        models.ResourceKind
	Reader      io.Reader
}

// DetectUpload checks fileName against the extension allow-list, sniffs the
// content type and verifies it agrees with the extension. The returned Upload
// replays the sniffed bytes.
func DetectUpload(fileName string, r io.Reader, size, maxSize int64) (*Upload, error) {
	if size > maxSize {
		return nil, fmt.Errorf("%w: %s exceeds the %s limit", ErrFileTooLarge,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(maxSize)))
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, fileName)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmptyFile
	}

	kind := models.ResourceKindFor(fileName)
	detected := mimetype.Detect(head)
	if !matchesKind(detected, kind) {
		return nil, fmt.Errorf("%w: %s content in %q", ErrUnsupportedType, detected.String(), fileName)
	}

	return &Upload{
		FileName:    fileName,
		ContentType: detected.String(),
		Size:        size,
		Kind:        kind,
		Reader:      io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

// IsPDF reports whether the upload is a PDF document.
func (u *Upload) IsPDF() bool {
	return u.Kind == models.KindPDF
}

func matchesKind(detected *mimetype.MIME, kind models.ResourceKind) bool {
	for m := detected; m != nil; m = m.Parent() {
		mime := m.String()
		switch kind {
		case models.KindPDF:
			if m.Is("application/pdf") {
				return true
			}
		case models.KindVideo:
			if strings.HasPrefix(mime, "video/") {
				return true
			}
		case models.KindImage:
			if strings.HasPrefix(mime, "image/") {
				return true
			}
		}
	}
	return false
}
