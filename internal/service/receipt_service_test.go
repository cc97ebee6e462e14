package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage creates a test image of the specified size and format
func createTestImage(width, height int, format string) ([]byte, string) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	var buf bytes.Buffer
	var filename string

	switch format {
	case "png":
		png.Encode(&buf, img)
		filename = "test.png"
	default:
		jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
		filename = "test.jpg"
	}

	return buf.Bytes(), filename
}

func setupReceiptService() (*ReceiptService, *testutil.MockObjectStore, *testutil.MockTransactionRepository) {
	store := testutil.NewMockObjectStore()
	txRepo := testutil.NewMockTransactionRepository()
	txRepo.AddTransaction(&domain.Transaction{ID: 10, ClientID: 1, Data: "2024-01-01", Operacao: domain.OperationExpense, Valor: decimal.NewFromInt(5)})
	return NewReceiptService(store, txRepo), store, txRepo
}

func TestValidateImage(t *testing.T) {
	svc := NewReceiptService(nil, nil)

	data, filename := createTestImage(100, 100, "jpeg")
	assert.NoError(t, svc.ValidateImage(data, filename))

	data, filename = createTestImage(100, 100, "png")
	assert.NoError(t, svc.ValidateImage(data, filename))

	data, _ = createTestImage(100, 100, "jpeg")
	assert.ErrorIs(t, svc.ValidateImage(data, "receipt.gif"), ErrInvalidReceiptFormat)

	data, filename = createTestImage(20, 20, "jpeg")
	assert.ErrorIs(t, svc.ValidateImage(data, filename), ErrReceiptTooSmall)

	assert.ErrorIs(t, svc.ValidateImage([]byte("not an image"), "x.jpg"), ErrInvalidReceiptData)

	big := make([]byte, MaxReceiptSize+1)
	assert.ErrorIs(t, svc.ValidateImage(big, "x.jpg"), ErrReceiptTooLarge)
}

func TestReceiptService_Disabled(t *testing.T) {
	svc := NewReceiptService(nil, testutil.NewMockTransactionRepository())
	assert.False(t, svc.IsEnabled())

	data, filename := createTestImage(100, 100, "jpeg")
	_, err := svc.Attach(context.Background(), 1, 10, data, filename)
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}

func TestReceiptService_AttachUploadsVariants(t *testing.T) {
	svc, store, txRepo := setupReceiptService()
	events := &testutil.MockEventPublisher{}
	svc.SetEventPublisher(events)

	data, filename := createTestImage(1200, 900, "png")
	updated, err := svc.Attach(context.Background(), 1, 10, data, filename)
	require.NoError(t, err)

	require.NotNil(t, updated.ComprovantePath)
	assert.True(t, strings.HasPrefix(*updated.ComprovantePath, "1/comprovantes/10/"))
	assert.True(t, strings.HasSuffix(*updated.ComprovantePath, "_display.jpg"))
	assert.Equal(t, 3, store.Count())
	assert.Equal(t, txRepo.Transactions[10].ComprovantePath, updated.ComprovantePath)

	for _, p := range variantPaths(*updated.ComprovantePath) {
		stored, ok := store.Objects[p]
		require.True(t, ok, "missing %s", p)
		assert.Equal(t, "image/jpeg", store.Types[p])

		img, err := jpeg.Decode(bytes.NewReader(stored))
		require.NoError(t, err)
		switch {
		case strings.HasSuffix(p, "_thumb.jpg"):
			assert.Equal(t, ThumbnailWidth, img.Bounds().Dx())
		case strings.HasSuffix(p, "_display.jpg"):
			assert.Equal(t, DisplayWidth, img.Bounds().Dx())
			assert.Equal(t, 600, img.Bounds().Dy())
		default:
			assert.Equal(t, 1200, img.Bounds().Dx())
		}
	}
	assert.Equal(t, []string{"transaction.updated"}, events.Types())
}

func TestReceiptService_ReplaceRemovesPrevious(t *testing.T) {
	svc, store, _ := setupReceiptService()
	ctx := context.Background()
	data, filename := createTestImage(100, 100, "jpeg")

	first, err := svc.Attach(ctx, 1, 10, data, filename)
	require.NoError(t, err)
	firstPath := *first.ComprovantePath

	second, err := svc.Attach(ctx, 1, 10, data, filename)
	require.NoError(t, err)

	assert.NotEqual(t, firstPath, *second.ComprovantePath)
	assert.Equal(t, 3, store.Count())
	_, stillThere := store.Objects[firstPath]
	assert.False(t, stillThere)
}

func TestReceiptService_UploadFailureCleansUp(t *testing.T) {
	svc, store, txRepo := setupReceiptService()
	store.UploadFn = func(objectPath string) error {
		if strings.HasSuffix(objectPath, "_original.jpg") {
			return errors.New("bucket unreachable")
		}
		return nil
	}

	data, filename := createTestImage(100, 100, "jpeg")
	_, err := svc.Attach(context.Background(), 1, 10, data, filename)
	require.Error(t, err)
	assert.Equal(t, 0, store.Count())
	assert.Nil(t, txRepo.Transactions[10].ComprovantePath)
}

func TestReceiptService_URLsAndRemove(t *testing.T) {
	svc, store, txRepo := setupReceiptService()
	ctx := context.Background()

	_, err := svc.URLs(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrReceiptNotFound)

	data, filename := createTestImage(100, 100, "jpeg")
	_, err = svc.Attach(ctx, 1, 10, data, filename)
	require.NoError(t, err)

	urls, err := svc.URLs(ctx, 1, 10)
	require.NoError(t, err)
	assert.Contains(t, urls.ThumbnailURL, "_thumb.jpg")
	assert.Contains(t, urls.DisplayURL, "_display.jpg")
	assert.Contains(t, urls.OriginalURL, "_original.jpg")
	assert.Contains(t, urls.DisplayURL, "expires=900")

	_, err = svc.URLs(ctx, 2, 10)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	updated, err := svc.Remove(ctx, 1, 10)
	require.NoError(t, err)
	assert.Nil(t, updated.ComprovantePath)
	assert.Nil(t, txRepo.Transactions[10].ComprovantePath)
	assert.Equal(t, 0, store.Count())

	_, err = svc.Remove(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestVariantPaths(t *testing.T) {
	assert.Equal(t,
		[]string{"1/comprovantes/2/abc_thumb.jpg", "1/comprovantes/2/abc_display.jpg", "1/comprovantes/2/abc_original.jpg"},
		variantPaths("1/comprovantes/2/abc_display.jpg"))
	assert.Nil(t, variantPaths("1/comprovantes/2/abc.png"))
}
