package adapters

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"gorm.io/gorm/schema"
)

const encryptedValuePrefix = "WG_ENC_"

var keyDerivationSalt = []byte("wg-portal-routeros/settings")

// ErrMissingPassphrase is returned when an encrypted value is read without an encryption passphrase.
var ErrMissingPassphrase = errors.New("value is encrypted but no encryption passphrase is configured")

// GormEncryptedStringSerializer is a GORM serializer that encrypts string values with XChaCha20-Poly1305.
// Values without the encryption prefix are read as plain text, so enabling encryption later keeps
// existing rows readable. The serializer must be registered before use:
//
//	schema.RegisterSerializer("encstr", serializer)
type GormEncryptedStringSerializer struct {
	key []byte // nil disables encryption
}

// NewGormEncryptedStringSerializer derives the encryption key from the passphrase.
// An empty passphrase disables encryption.
func NewGormEncryptedStringSerializer(passphrase string) GormEncryptedStringSerializer {
	if passphrase == "" {
		return GormEncryptedStringSerializer{}
	}
	return GormEncryptedStringSerializer{
		key: argon2.IDKey([]byte(passphrase), keyDerivationSalt, 1, 64*1024, 4, chacha20poly1305.KeySize),
	}
}

// Scan implements the GORM serializer interface. It decrypts the value after reading it from the database.
func (s GormEncryptedStringSerializer) Scan(
	ctx context.Context,
	field *schema.Field,
	dst reflect.Value,
	dbValue any,
) error {
	var dbString string
	switch v := dbValue.(type) {
	case nil:
	case []byte:
		dbString = string(v)
	case string:
		dbString = v
	default:
		return fmt.Errorf("unsupported type %T for encrypted field %s", dbValue, field.Name)
	}

	if strings.HasPrefix(dbString, encryptedValuePrefix) {
		if s.key == nil {
			return fmt.Errorf("failed to read field %s: %w", field.Name, ErrMissingPassphrase)
		}
		plain, err := s.decrypt(strings.TrimPrefix(dbString, encryptedValuePrefix))
		if err != nil {
			return fmt.Errorf("failed to decrypt value for field %s: %w", field.Name, err)
		}
		dbString = plain
	}

	field.ReflectValueOf(ctx, dst).SetString(dbString)
	return nil
}

// Value implements the GORM serializer interface. It encrypts the value before storing it in the database.
func (s GormEncryptedStringSerializer) Value(
	_ context.Context,
	_ *schema.Field,
	_ reflect.Value,
	fieldValue any,
) (any, error) {
	if fieldValue == nil {
		return nil, nil
	}

	v, ok := fieldValue.(string)
	if !ok {
		return nil, fmt.Errorf("encryption only supports string values, got %T", fieldValue)
	}
	if v == "" || s.key == nil {
		return v, nil
	}

	encrypted, err := s.encrypt(v)
	if err != nil {
		return nil, err
	}
	return encryptedValuePrefix + encrypted, nil
}

func (s GormEncryptedStringSerializer) encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s GormEncryptedStringSerializer) decrypt(encoded string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
