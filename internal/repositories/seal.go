package repositories

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

var errSealedPayload = errors.New("sealed session payload is malformed")

// sealKey derives the payload key from the tab key. Persistent stores only hold
// keyDigest(key), so a stored payload cannot be opened without the tab key.
func sealKey(key string) [32]byte {
	return blake2b.Sum256([]byte("leandrose/seal:" + key))
}

// sealSession encrypts sess with XChaCha20-Poly1305, bound to the key digest.
// The output is nonce || ciphertext.
func sealSession(key string, sess session.Session) ([]byte, error) {
	plain, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	k := sealKey(key)
	aead, err := chacha20poly1305.NewX(k[:])
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("session nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plain, keyDigest(key)), nil
}

func openSession(key string, sealed []byte) (session.Session, error) {
	k := sealKey(key)
	aead, err := chacha20poly1305.NewX(k[:])
	if err != nil {
		return session.Session{}, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return session.Session{}, errSealedPayload
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, keyDigest(key))
	if err != nil {
		return session.Session{}, fmt.Errorf("open session payload: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		return session.Session{}, fmt.Errorf("decode tab session: %w", err)
	}
	return sess, nil
}
