// Package qr builds and parses the payload encoded into a table's QR
// code. The payload is a plain URL so any phone camera resolves it
// without an app: <base-url>/menu/<restaurant-slug>/<table-number>.
package qr

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrInvalidPayload = errors.New("not a menu QR payload")

// Encode derives the QR payload for a table. It is deterministic: the
// same (slug, table number) pair always yields the same payload, so
// regenerating a table's QR code is idempotent.
func Encode(baseURL, slug, tableNumber string) string {
	return fmt.Sprintf("%s/menu/%s/%s",
		strings.TrimRight(baseURL, "/"),
		url.PathEscape(slug),
		url.PathEscape(tableNumber))
}

// Decode extracts the (slug, table number) pair from a payload produced
// by Encode.
func Decode(payload string) (slug, tableNumber string, err error) {
	u, err := url.Parse(payload)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	parts := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	if len(parts) != 3 || parts[0] != "menu" {
		return "", "", ErrInvalidPayload
	}
	slug, err = url.PathUnescape(parts[1])
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	tableNumber, err = url.PathUnescape(parts[2])
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if slug == "" || tableNumber == "" {
		return "", "", ErrInvalidPayload
	}
	return slug, tableNumber, nil
}

// PNG renders the payload as a QR code image for the admin console.
func PNG(payload string, size int) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, size)
}
