package domain

import (
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

type KeyPair struct {
	PrivateKey string
	PublicKey  string
}

// NewFreshKeypair generates a new key pair.
func NewFreshKeypair() (KeyPair, error) {
	privateKey, err := wgtypes.GeneratePrivateKey()
	if err != nil {
		return KeyPair{}, err
	}

	return KeyPair{
		PrivateKey: privateKey.String(),
		PublicKey:  privateKey.PublicKey().String(),
	}, nil
}

// NewPreSharedKey generates a new pre-shared key.
func NewPreSharedKey() (string, error) {
	preSharedKey, err := wgtypes.GenerateKey()
	if err != nil {
		return "", err
	}

	return preSharedKey.String(), nil
}

// PublicKeyFromPrivateKey returns the public key for a given private key.
// If the private key is invalid, an empty string is returned.
func PublicKeyFromPrivateKey(key string) string {
	privKey, err := wgtypes.ParseKey(key)
	if err != nil {
		return ""
	}
	return privKey.PublicKey().String()
}

// IsValidKey reports whether key is a base64 encoded 32 byte WireGuard key.
func IsValidKey(key string) bool {
	_, err := wgtypes.ParseKey(key)
	return err == nil
}
