package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/repository/storage"
	"github.com/dafibh/fluxo/fluxo-backend/internal/websocket"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth  = 50
	MinReceiptHeight = 50
	ThumbnailWidth   = 200
	DisplayWidth     = 800
	JPEGQuality      = 85
	ReceiptURLExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge      = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidReceiptFormat = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrReceiptTooSmall      = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidReceiptData   = errors.New("invalid image data")
	ErrReceiptNotFound      = errors.New("transaction has no receipt")
	ErrStorageNotConfigured = errors.New("file storage not configured")
)

// AllowedReceiptExtensions maps extensions to content types
var AllowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

var receiptVariants = []struct {
	name     string
	maxWidth int
}{
	{"thumb", ThumbnailWidth},
	{"display", DisplayWidth},
	{"original", 0}, // 0 keeps the original size
}

// ReceiptURLs holds short-lived links to each stored receipt variant
type ReceiptURLs struct {
	ThumbnailURL string    `json:"thumbnailUrl"`
	DisplayURL   string    `json:"displayUrl"`
	OriginalURL  string    `json:"originalUrl"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// ReceiptService stores receipt images (comprovantes) attached to transactions
type ReceiptService struct {
	eventPublishing
	storage         storage.ObjectStore
	transactionRepo domain.TransactionRepository
}

// NewReceiptService creates a new ReceiptService. A nil store disables uploads.
func NewReceiptService(store storage.ObjectStore, transactionRepo domain.TransactionRepository) *ReceiptService {
	return &ReceiptService{storage: store, transactionRepo: transactionRepo}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// ValidateImage validates image format and size
func (s *ReceiptService) ValidateImage(data []byte, filename string) error {
	_, err := validateAndDecode(data, filename)
	return err
}

func validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedReceiptExtensions[ext]; !ok {
		return nil, ErrInvalidReceiptFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, ErrReceiptTooSmall
	}
	return img, nil
}

// Attach resizes the image, uploads every variant and points the transaction
// at the new receipt. A previous receipt is removed once the new one is stored.
func (s *ReceiptService) Attach(ctx context.Context, clientID, transactionID int32, data []byte, filename string) (*domain.Transaction, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageNotConfigured
	}

	existing, err := s.transactionRepo.GetByID(ctx, clientID, transactionID)
	if err != nil {
		return nil, err
	}

	img, err := validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	previous := existing.ComprovantePath
	receiptID := uuid.New().String()
	var uploaded []string

	for _, variant := range receiptVariants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			s.deletePaths(ctx, uploaded)
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := storage.ReceiptObjectPath(clientID, transactionID, receiptID, variant.name, ".jpg")
		stored, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
		if err != nil {
			s.deletePaths(ctx, uploaded)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		uploaded = append(uploaded, stored)
	}

	displayPath := storage.ReceiptObjectPath(clientID, transactionID, receiptID, "display", ".jpg")
	updated, err := s.transactionRepo.SetReceipt(ctx, clientID, transactionID, &displayPath)
	if err != nil {
		s.deletePaths(ctx, uploaded)
		return nil, err
	}

	if previous != nil {
		s.deletePaths(ctx, variantPaths(*previous))
	}

	log.Info().Int32("client_id", clientID).Int32("transaction_id", transactionID).Msg("Attached receipt")
	s.publishEvent(clientID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// URLs returns presigned links to the receipt variants of a transaction
func (s *ReceiptService) URLs(ctx context.Context, clientID, transactionID int32) (*ReceiptURLs, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageNotConfigured
	}
	tx, err := s.transactionRepo.GetByID(ctx, clientID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.ComprovantePath == nil {
		return nil, ErrReceiptNotFound
	}

	paths := variantPaths(*tx.ComprovantePath)
	if paths == nil {
		return nil, ErrReceiptNotFound
	}
	urls := make([]string, len(paths))
	for i, p := range paths {
		u, err := s.storage.GeneratePresignedURL(ctx, p, ReceiptURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("presign receipt: %w", err)
		}
		urls[i] = u
	}

	return &ReceiptURLs{
		ThumbnailURL: urls[0],
		DisplayURL:   urls[1],
		OriginalURL:  urls[2],
		ExpiresAt:    time.Now().Add(ReceiptURLExpiry).UTC(),
	}, nil
}

// Remove deletes the receipt of a transaction
func (s *ReceiptService) Remove(ctx context.Context, clientID, transactionID int32) (*domain.Transaction, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageNotConfigured
	}
	tx, err := s.transactionRepo.GetByID(ctx, clientID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.ComprovantePath == nil {
		return nil, ErrReceiptNotFound
	}
	stored := *tx.ComprovantePath

	updated, err := s.transactionRepo.SetReceipt(ctx, clientID, transactionID, nil)
	if err != nil {
		return nil, err
	}
	s.deletePaths(ctx, variantPaths(stored))

	s.publishEvent(clientID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// deletePaths is best effort; failures only leave orphaned objects behind
func (s *ReceiptService) deletePaths(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.storage.Delete(ctx, p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("Failed to delete receipt object")
		}
	}
}

// variantPaths expands a stored variant path into thumb, display and original paths
func variantPaths(stored string) []string {
	for _, v := range receiptVariants {
		suffix := "_" + v.name + ".jpg"
		if strings.HasSuffix(stored, suffix) {
			base := strings.TrimSuffix(stored, suffix)
			out := make([]string, 0, len(receiptVariants))
			for _, each := range receiptVariants {
				out = append(out, base+"_"+each.name+".jpg")
			}
			return out
		}
	}
	return nil
}
