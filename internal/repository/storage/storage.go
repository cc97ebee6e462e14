package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ObjectStore defines the interface for file storage operations used by
// receipt uploads and report exports
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// ReceiptObjectPath creates a unique object path for one variant of a transaction receipt
func ReceiptObjectPath(clientID, transactionID int32, receiptID, variant, ext string) string {
	filename := fmt.Sprintf("%s_%s%s", receiptID, variant, ext)
	return path.Join(fmt.Sprintf("%d", clientID), "comprovantes", fmt.Sprintf("%d", transactionID), filename)
}

// ExportObjectPath creates a unique object path for a CSV export
func ExportObjectPath(clientID int32, at time.Time) string {
	filename := fmt.Sprintf("transacoes_%s_%s.csv", at.Format("20060102-150405"), uuid.New().String()[:8])
	return path.Join(fmt.Sprintf("%d", clientID), "exports", filename)
}
