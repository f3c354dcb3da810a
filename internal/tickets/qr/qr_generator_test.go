package qr_test

import (
	"testing"

	"qr-admin-service/internal/models"
	"qr-admin-service/internal/tickets/qr"
)

func TestGenerateEncryptedQR(t *testing.T) {
	qrGen := qr.NewQRGenerator("test-secret-key")

	payload := models.QRPayload{
		TicketID:   "test-ticket-id",
		OrderID:    "test-order-id",
		TicketType: "VIP",
	}

	qrBytes, err := qrGen.GenerateEncryptedQR(payload)
	if err != nil {
		t.Fatalf("Failed to generate QR code: %v", err)
	}
	if len(qrBytes) == 0 {
		t.Error("Generated QR code is empty")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	qrGen := qr.NewQRGenerator("test-secret-key")

	payload := models.QRPayload{
		TicketID:   "ticket-1",
		OrderID:    "order-1",
		TicketType: "General",
	}

	encrypted, err := qrGen.EncryptPayload(payload)
	if err != nil {
		t.Fatalf("Failed to encrypt payload: %v", err)
	}

	decrypted, err := qrGen.DecryptPayload(encrypted)
	if err != nil {
		t.Fatalf("Failed to decrypt payload: %v", err)
	}

	if decrypted.TicketID != payload.TicketID {
		t.Errorf("Expected ticket ID %s, got %s", payload.TicketID, decrypted.TicketID)
	}
	if decrypted.OrderID != payload.OrderID {
		t.Errorf("Expected order ID %s, got %s", payload.OrderID, decrypted.OrderID)
	}
	if decrypted.TicketType != payload.TicketType {
		t.Errorf("Expected ticket type %s, got %s", payload.TicketType, decrypted.TicketType)
	}
}

func TestEncryptionUsesRandomIV(t *testing.T) {
	qrGen := qr.NewQRGenerator("test-secret-key")

	payload := models.QRPayload{TicketID: "ticket-1", OrderID: "order-1", TicketType: "VIP"}

	first, err := qrGen.EncryptPayload(payload)
	if err != nil {
		t.Fatalf("Failed to encrypt payload: %v", err)
	}
	second, err := qrGen.EncryptPayload(payload)
	if err != nil {
		t.Fatalf("Failed to encrypt payload: %v", err)
	}

	// The random IV makes every ciphertext unique, even for equal payloads.
	if first == second {
		t.Error("Expected distinct ciphertexts for the same payload")
	}
}

func TestDecryptWithWrongSecret(t *testing.T) {
	qrGen1 := qr.NewQRGenerator("secret-one")
	qrGen2 := qr.NewQRGenerator("secret-two")

	encrypted, err := qrGen1.EncryptPayload(models.QRPayload{
		TicketID: "ticket-1", OrderID: "order-1", TicketType: "VIP",
	})
	if err != nil {
		t.Fatalf("Failed to encrypt payload: %v", err)
	}

	// Wrong key yields garbage that fails JSON decoding.
	if _, err := qrGen2.DecryptPayload(encrypted); err == nil {
		t.Error("Expected decryption with the wrong secret to fail")
	}
}

func TestDecryptGarbage(t *testing.T) {
	qrGen := qr.NewQRGenerator("test-secret-key")

	if _, err := qrGen.DecryptPayload("not-base64!!"); err == nil {
		t.Error("Expected an error for malformed input")
	}
	if _, err := qrGen.DecryptPayload("c2hvcnQ="); err == nil {
		t.Error("Expected an error for input shorter than one AES block")
	}
}
