// Package photo validates uploaded fridge photos and prepares them for the
// vision model.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
)

const jpegQuality = 85

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
	ErrEmpty           = errors.New("image is empty")
	ErrUndecodable     = errors.New("image could not be decoded")
)

// ValidationError carries a user-facing message for a rejected upload
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

// Processor validates and normalizes uploads
type Processor struct {
	allowedTypes []string
	maxSize      int64
	maxDimension int
}

func NewProcessor(allowedTypes []string, maxSize int64, maxDimension int) *Processor {
	return &Processor{
		allowedTypes: allowedTypes,
		maxSize:      maxSize,
		maxDimension: maxDimension,
	}
}

// Validate checks the declared content type and size before decoding
func (p *Processor) Validate(contentType string, size int64) error {
	if !p.allowed(contentType) {
		return &ValidationError{
			Err:     ErrUnsupportedType,
			Message: fmt.Sprintf("지원하지 않는 파일 형식입니다. %s만 가능합니다.", strings.Join(p.allowedTypes, ", ")),
		}
	}
	if size > p.maxSize {
		return &ValidationError{
			Err:     ErrTooLarge,
			Message: fmt.Sprintf("파일 크기가 너무 큽니다. 최대 %.1fMB까지 가능합니다.", float64(p.maxSize)/(1024*1024)),
		}
	}
	if size == 0 {
		return &ValidationError{Err: ErrEmpty, Message: "빈 파일입니다."}
	}
	return nil
}

// Result is a processed photo
type Result struct {
	JPEG   []byte
	Base64 string
	Width  int
	Height int
}

// Process decodes data, flattens transparency onto white, fits the image
// inside maxDimension on both sides without upscaling and re-encodes it as JPEG.
func (p *Processor) Process(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, &ValidationError{Err: ErrEmpty, Message: "빈 파일입니다."}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("%w: %v", ErrUndecodable, err), Message: "이미지를 읽을 수 없습니다."}
	}

	img = flatten(img)
	b := img.Bounds()
	if b.Dx() > p.maxDimension || b.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	out := buf.Bytes()
	return &Result{
		JPEG:   out,
		Base64: base64.StdEncoding.EncodeToString(out),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (p *Processor) allowed(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, t := range p.allowedTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// flatten draws img over an opaque white background
func flatten(img image.Image) image.Image {
	if _, ok := img.(*image.YCbCr); ok {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, imaging.Clone(img), image.Point{}, 1.0)
}
