package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Keys are derived from one configured secret so that the cookie signature,
// the cookie encryption and the form tokens never share key material.
type Keys struct {
	CookieHash  []byte
	CookieBlock []byte
	FormToken   []byte
}

func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		return Keys{}, fmt.Errorf("session secret is empty")
	}

	derive := func(info string, size int) ([]byte, error) {
		key := make([]byte, size)
		r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("derive %s key: %w", info, err)
		}
		return key, nil
	}

	hashKey, err := derive("library-web cookie hash", 64)
	if err != nil {
		return Keys{}, err
	}
	blockKey, err := derive("library-web cookie block", 32)
	if err != nil {
		return Keys{}, err
	}
	formKey, err := derive("library-web form token", 32)
	if err != nil {
		return Keys{}, err
	}
	return Keys{CookieHash: hashKey, CookieBlock: blockKey, FormToken: formKey}, nil
}
