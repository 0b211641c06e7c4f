package ghash

import (
	"encoding/base64"
	"testing"

	"github.com/kauma-lab/kauma/internal/blockcipher"
)

func b64(t *testing.T, s string) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("bad base64: %v", err)
	}
	return raw
}

func block16(t *testing.T, s string) [16]byte {
	raw := b64(t, s)
	var out [16]byte
	copy(out[:], raw)
	return out
}

func block12(t *testing.T, s string) [12]byte {
	raw := b64(t, s)
	var out [12]byte
	copy(out[:], raw)
	return out
}

// TestEncryptAESVector checks a known-answer AES-GCM test vector.
func TestEncryptAESVector(t *testing.T) {
	nonce := block12(t, "4gF+BtR3ku/PUQci")
	key := block16(t, "Xjq/GkpTSWoe3ZH0F+tjrQ==")
	pt := b64(t, "RGFzIGlzdCBlaW4gVGVzdA==")
	ad := b64(t, "QUQtRGF0ZW4=")

	res, err := Encrypt(blockcipher.AES128{}, key, nonce, pt, ad)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	wantCT := b64(t, "ET3RmvH/Hbuxba63EuPRrw==")
	wantTag := block16(t, "Mp0APJb/ZIURRwQlMgNN/w==")
	wantL := block16(t, "AAAAAAAAAEAAAAAAAAAAgA==")
	wantH := block16(t, "Bu6ywbsUKlpmZXMQyuGAng==")

	if string(res.Ciphertext) != string(wantCT) {
		t.Fatalf("ciphertext mismatch: got %x want %x", res.Ciphertext, wantCT)
	}
	if res.Tag != wantTag {
		t.Fatalf("tag mismatch: got %x want %x", res.Tag, wantTag)
	}
	if res.L != wantL {
		t.Fatalf("L mismatch: got %x want %x", res.L, wantL)
	}
	if res.H != wantH {
		t.Fatalf("H mismatch: got %x want %x", res.H, wantH)
	}
}

func TestDecryptRoundTrip(t *testing.T) {
	nonce := block12(t, "4gF+BtR3ku/PUQci")
	key := block16(t, "Xjq/GkpTSWoe3ZH0F+tjrQ==")
	pt := b64(t, "RGFzIGlzdCBlaW4gVGVzdA==")
	ad := b64(t, "QUQtRGF0ZW4=")

	enc, err := Encrypt(blockcipher.AES128{}, key, nonce, pt, ad)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	dec, err := Decrypt(blockcipher.AES128{}, key, nonce, enc.Ciphertext, ad, enc.Tag)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if !dec.Authentic {
		t.Fatalf("expected authentic decryption")
	}
	if string(dec.Plaintext) != string(pt) {
		t.Fatalf("plaintext mismatch: got %q want %q", dec.Plaintext, pt)
	}
}

func TestDecryptFlagsBitFlips(t *testing.T) {
	nonce := block12(t, "4gF+BtR3ku/PUQci")
	key := block16(t, "Xjq/GkpTSWoe3ZH0F+tjrQ==")
	pt := b64(t, "RGFzIGlzdCBlaW4gVGVzdA==")
	ad := b64(t, "QUQtRGF0ZW4=")

	enc, err := Encrypt(blockcipher.AES128{}, key, nonce, pt, ad)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	flippedTag := enc.Tag
	flippedTag[0] ^= 0x01
	dec, err := Decrypt(blockcipher.AES128{}, key, nonce, enc.Ciphertext, ad, flippedTag)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if dec.Authentic {
		t.Fatalf("expected inauthentic decryption after tag bit flip")
	}

	flippedAD := append([]byte(nil), ad...)
	flippedAD[0] ^= 0x01
	dec, err = Decrypt(blockcipher.AES128{}, key, nonce, enc.Ciphertext, flippedAD, enc.Tag)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if dec.Authentic {
		t.Fatalf("expected inauthentic decryption after AD bit flip")
	}
}
