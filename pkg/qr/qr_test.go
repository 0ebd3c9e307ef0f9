package qr

import (
	"strings"
	"testing"
)

func TestEPCPayload(t *testing.T) {
	payload, err := EPCPayload(PaymentRequest{
		BeneficiaryName: "Amy & Sam",
		IBAN:            "DE89 3704 0044 0532 0130 00",
		AmountCents:     12550,
		Remittance:      "Honeymoon fund",
	})
	if err != nil {
		t.Fatalf("payload error: %v", err)
	}

	lines := strings.Split(payload, "\n")
	if lines[0] != "BCD" || lines[3] != "SCT" {
		t.Fatalf("unexpected envelope: %q", payload)
	}
	if lines[6] != "DE89370400440532013000" {
		t.Fatalf("expected normalised IBAN, got %q", lines[6])
	}
	if lines[7] != "EUR125.50" {
		t.Fatalf("expected amount EUR125.50, got %q", lines[7])
	}
	if lines[10] != "Honeymoon fund" {
		t.Fatalf("expected remittance, got %q", lines[10])
	}
}

func TestEPCPayloadOmitsZeroAmount(t *testing.T) {
	payload, err := EPCPayload(PaymentRequest{
		BeneficiaryName: "Amy & Sam",
		IBAN:            "DE89370400440532013000",
	})
	if err != nil {
		t.Fatalf("payload error: %v", err)
	}

	lines := strings.Split(payload, "\n")
	if lines[7] != "" {
		t.Fatalf("expected empty amount line, got %q", lines[7])
	}
}

func TestEPCPayloadValidation(t *testing.T) {
	if _, err := EPCPayload(PaymentRequest{IBAN: "DE89370400440532013000"}); err == nil {
		t.Fatal("expected error for missing beneficiary")
	}
	if _, err := EPCPayload(PaymentRequest{BeneficiaryName: "x", IBAN: "short"}); err == nil {
		t.Fatal("expected error for invalid IBAN")
	}
	if _, err := EPCPayload(PaymentRequest{BeneficiaryName: "x", IBAN: "DE89370400440532013000", AmountCents: -1}); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestEncodePayment(t *testing.T) {
	png, err := EncodePayment(PaymentRequest{
		BeneficiaryName: "Amy & Sam",
		IBAN:            "DE89370400440532013000",
		AmountCents:     5000,
	}, 0)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("expected PNG bytes")
	}
}

func TestEncodeTextRejectsEmpty(t *testing.T) {
	if _, err := EncodeText("  ", 128); err == nil {
		t.Fatal("expected error for empty text")
	}
}
