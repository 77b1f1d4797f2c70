package adapters

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestGormEncryptedStringSerializer_EncryptDecrypt(t *testing.T) {
	s := NewGormEncryptedStringSerializer("passphrase")

	first, err := s.encrypt("secret")
	require.NoError(t, err)
	second, err := s.encrypt("secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "nonce must be random")

	plain, err := s.decrypt(first)
	require.NoError(t, err)
	assert.Equal(t, "secret", plain)

	_, err = NewGormEncryptedStringSerializer("other").decrypt(first)
	assert.Error(t, err)

	_, err = s.decrypt("c2hvcnQ=")
	assert.Error(t, err)
}

func TestGormEncryptedStringSerializer_Value(t *testing.T) {
	s := NewGormEncryptedStringSerializer("passphrase")

	v, err := s.Value(t.Context(), nil, reflect.Value{}, "secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(v.(string), encryptedValuePrefix))

	v, err = s.Value(t.Context(), nil, reflect.Value{}, "")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = s.Value(t.Context(), nil, reflect.Value{}, 42)
	assert.Error(t, err)

	plain := NewGormEncryptedStringSerializer("")
	v, err = plain.Value(t.Context(), nil, reflect.Value{}, "secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", v)
}

func TestGormEncryptedStringSerializer_ScanWithoutPassphrase(t *testing.T) {
	encrypted, err := NewGormEncryptedStringSerializer("passphrase").Value(t.Context(), nil, reflect.Value{}, "secret")
	require.NoError(t, err)

	s := NewGormEncryptedStringSerializer("")
	err = s.Scan(t.Context(), &schema.Field{Name: "Password"}, reflect.Value{}, encrypted)
	assert.ErrorIs(t, err, ErrMissingPassphrase)
	assert.NotContains(t, err.Error(), encrypted.(string))
}
