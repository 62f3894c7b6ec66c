package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"

	_ "golang.org/x/image/webp"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/layout"
	"github.com/juliusiqbal/ai-img-gen/internal/storage"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// uploadedImage is a validated image read from a multipart form.
type uploadedImage struct {
	Name   string
	Data   []byte
	MIME   string
	Width  int
	Height int
}

func (a *App) maxUploadBytes() int64 {
	if a.MaxUploadBytes > 0 {
		return a.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

func (a *App) readImage(fh *multipart.FileHeader) (*uploadedImage, error) {
	limit := a.maxUploadBytes()
	if fh.Size > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d KB", domain.ErrInvalidInput, fh.Filename, limit>>10)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d KB", domain.ErrInvalidInput, fh.Filename, limit>>10)
	}
	mime := http.DetectContentType(data)
	if _, ok := allowedImageTypes[mime]; !ok {
		return nil, fmt.Errorf("%w: %s must be a jpeg, png or webp image", domain.ErrInvalidInput, fh.Filename)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, &domain.DecodeError{Ref: fh.Filename, Err: err})
	}
	if int64(cfg.Width)*int64(cfg.Height) > layout.MaxSourcePixels {
		return nil, fmt.Errorf("%w: %s is %dx%d, above %d pixels", domain.ErrInvalidInput, fh.Filename, cfg.Width, cfg.Height, layout.MaxSourcePixels)
	}
	return &uploadedImage{Name: fh.Filename, Data: data, MIME: mime, Width: cfg.Width, Height: cfg.Height}, nil
}

func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes()+1<<20)
	if err := r.ParseMultipartForm(a.maxUploadBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds the size limit")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "expected multipart form data")
		return
	}
	_, fh, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "validation_failed", "image is required")
		return
	}
	img, err := a.readImage(fh)
	if err != nil {
		a.fail(w, r, "Upload failed", err)
		return
	}
	key, err := a.Store.Write(r.Context(), storage.UploadKey(r.FormValue("category"), storage.ExtensionFor(img.MIME)), img.Data)
	if err != nil {
		a.fail(w, r, "Upload failed", err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"message":    "Image uploaded successfully",
		"path":       key,
		"url":        a.Store.URL(key),
		"dimensions": domain.PixelSize{Width: img.Width, Height: img.Height},
	})
}
