package models_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ganzorig/mishil/app/models"
)

func imageSet(n, main int) []models.ProductImage {
	images := make([]models.ProductImage, n)
	for i := range images {
		images[i] = models.ProductImage{
			URL:    fmt.Sprintf("https://cdn.example.com/p/%d.jpg", i),
			IsMain: i == main,
			Order:  i,
		}
	}
	return images
}

func TestValidateImages(t *testing.T) {
	cases := []struct {
		name   string
		images []models.ProductImage
		want   error
	}{
		{"no images", nil, models.ErrNoImages},
		{"single image", imageSet(1, 0), nil},
		{"at the cap", imageSet(models.MaxProductImages, 0), nil},
		{"over the cap", imageSet(models.MaxProductImages+1, 0), models.ErrTooManyImages},
		{"no main image", imageSet(3, -1), models.ErrNoMainImage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := models.ValidateImages(tc.images); !errors.Is(err, tc.want) {
				t.Errorf("ValidateImages = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateImagesRejectsTwoMains(t *testing.T) {
	images := imageSet(3, 0)
	images[2].IsMain = true
	if err := models.ValidateImages(images); !errors.Is(err, models.ErrNoMainImage) {
		t.Errorf("ValidateImages = %v, want ErrNoMainImage", err)
	}
}

func TestOrderStatusAndPayment(t *testing.T) {
	for _, s := range []string{
		models.OrderPending, models.OrderProcessing, models.OrderShipped,
		models.OrderDelivered, models.OrderCancelled,
	} {
		if !models.ValidOrderStatus(s) {
			t.Errorf("ValidOrderStatus(%q) = false", s)
		}
	}
	if models.ValidOrderStatus("returned") {
		t.Error("unknown status accepted")
	}

	for _, m := range []string{models.PayLater, models.PaidPersonally, models.BankTransfer} {
		if !models.ValidPaymentMethod(m) {
			t.Errorf("ValidPaymentMethod(%q) = false", m)
		}
	}
	if models.ValidPaymentMethod("crypto") {
		t.Error("unknown payment method accepted")
	}
}
