package qr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

// PaymentRequest describes a SEPA credit transfer to encode as an EPC QR code.
type PaymentRequest struct {
	BeneficiaryName string
	IBAN            string
	BIC             string
	AmountCents     int64
	Remittance      string
}

// EPCPayload renders the EPC069-12 payload understood by European banking apps.
func EPCPayload(req PaymentRequest) (string, error) {
	name := strings.TrimSpace(req.BeneficiaryName)
	iban := strings.ToUpper(strings.ReplaceAll(req.IBAN, " ", ""))

	if name == "" {
		return "", errors.New("qr: beneficiary name is required")
	}
	if len(iban) < 15 || len(iban) > 34 {
		return "", errors.New("qr: IBAN length is invalid")
	}
	if req.AmountCents < 0 {
		return "", errors.New("qr: amount must not be negative")
	}

	amount := ""
	if req.AmountCents > 0 {
		amount = fmt.Sprintf("EUR%d.%02d", req.AmountCents/100, req.AmountCents%100)
	}

	lines := []string{
		"BCD",
		"002",
		"1",
		"SCT",
		strings.TrimSpace(req.BIC),
		name,
		iban,
		amount,
		"",
		"",
		sanitizeRemittance(req.Remittance),
	}

	return strings.Join(lines, "\n"), nil
}

// EncodePayment renders the payment request as a PNG QR image.
func EncodePayment(req PaymentRequest, size int) ([]byte, error) {
	payload, err := EPCPayload(req)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultSize
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}

// EncodeText renders arbitrary text (provisioning URIs, links) as a PNG QR image.
func EncodeText(text string, size int) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("qr: text is required")
	}
	if size <= 0 {
		size = defaultSize
	}
	return qrcode.Encode(text, qrcode.Medium, size)
}

func sanitizeRemittance(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	if len(value) > 140 {
		value = value[:140]
	}
	return strings.TrimSpace(value)
}
