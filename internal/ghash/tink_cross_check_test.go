package ghash

import (
	"bytes"
	"testing"
	"time"

	tink "github.com/google/tink/go/aead/subtle"
	"golang.org/x/exp/rand"

	"github.com/kauma-lab/kauma/internal/blockcipher"
)

// TestFuzzAgainstTinkAESGCM cross-checks Encrypt's ciphertext and tag
// against Google Tink's independent AES-GCM implementation. Tink's
// subtle.AESGCM.Decrypt expects nonce||ciphertext||tag, so our own
// nonce is prepended to feed it our construction directly.
func TestFuzzAgainstTinkAESGCM(t *testing.T) {
	d := 500 * time.Millisecond
	if testing.Short() {
		d = 10 * time.Millisecond
	}
	timer := time.NewTimer(d)

	seed := uint64(time.Now().UnixNano())
	rng := rand.New(rand.NewSource(seed))

	for i := 0; ; i++ {
		select {
		case <-timer.C:
			t.Logf("iters: %d", i)
			return
		default:
		}

		var key [16]byte
		var nonce [12]byte
		rng.Read(key[:])
		rng.Read(nonce[:])

		pt := make([]byte, rng.Intn(64))
		rng.Read(pt)
		ad := make([]byte, rng.Intn(32))
		rng.Read(ad)

		got, err := Encrypt(blockcipher.AES128{}, key, nonce, pt, ad)
		if err != nil {
			t.Fatalf("Encrypt error: %v", err)
		}

		tinkGCM, err := tink.NewAESGCM(key[:])
		if err != nil {
			t.Fatalf("tink.NewAESGCM error: %v", err)
		}

		packed := append(append(append([]byte{}, nonce[:]...), got.Ciphertext...), got.Tag[:]...)
		wantPT, err := tinkGCM.Decrypt(packed, ad)
		if err != nil {
			t.Fatalf("tink decrypt rejected our own ciphertext/tag: %v", err)
		}
		if !bytes.Equal(wantPT, pt) {
			t.Fatalf("tink-decrypted plaintext mismatch: got %x want %x", wantPT, pt)
		}
	}
}
