package qr_test

import (
	"testing"

	"github.com/qrdine/api/internal/qr"
)

func TestEncode(t *testing.T) {
	got := qr.Encode("http://localhost:3000", "burger-palace", "12")
	want := "http://localhost:3000/menu/burger-palace/12"
	if got != want {
		t.Errorf("payload: got %s, want %s", got, want)
	}
}

func TestEncodeTrimsTrailingSlash(t *testing.T) {
	got := qr.Encode("http://localhost:3000/", "burger-palace", "12")
	want := "http://localhost:3000/menu/burger-palace/12"
	if got != want {
		t.Errorf("payload: got %s, want %s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		slug   string
		number string
	}{
		{"burger-palace", "1"},
		{"burger-palace", "42"},
		{"sushi-ya", "A12"},
		{"cafe-del-mar", "terrace 3"},
	}
	for _, c := range cases {
		payload := qr.Encode("https://qrdine.example.com", c.slug, c.number)
		slug, number, err := qr.Decode(payload)
		if err != nil {
			t.Fatalf("decode %q: %v", payload, err)
		}
		if slug != c.slug || number != c.number {
			t.Errorf("round trip %q: got (%s, %s), want (%s, %s)",
				payload, slug, number, c.slug, c.number)
		}
	}
}

func TestDecodeRejectsNonMenuPaths(t *testing.T) {
	for _, payload := range []string{
		"http://localhost:3000/admin/burger-palace/1",
		"http://localhost:3000/menu/burger-palace",
		"http://localhost:3000/menu/burger-palace/1/extra",
		"http://localhost:3000/",
		"not a url at all ://",
	} {
		if _, _, err := qr.Decode(payload); err == nil {
			t.Errorf("expected error decoding %q", payload)
		}
	}
}

func TestEncodeIsIdempotent(t *testing.T) {
	a := qr.Encode("http://localhost:3000", "burger-palace", "7")
	b := qr.Encode("http://localhost:3000", "burger-palace", "7")
	if a != b {
		t.Errorf("same pair produced different payloads: %s vs %s", a, b)
	}
}

func TestPNG(t *testing.T) {
	png, err := qr.PNG("http://localhost:3000/menu/burger-palace/1", 256)
	if err != nil {
		t.Fatalf("render png: %v", err)
	}
	if len(png) == 0 {
		t.Error("expected non-empty png bytes")
	}
}
