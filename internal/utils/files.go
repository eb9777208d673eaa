package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// SaveMultipartTemp copies an uploaded form file to a temporary file on
// local disk and returns its path. The caller (the media uploader) owns
// the file from that point and removes it on every exit path. The original
// extension is preserved so the upload target can infer a content type.
func SaveMultipartTemp(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
