package secret_test

import (
	"courtpay/shared/secret"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestBox_EncryptDecrypt(t *testing.T) {
	box, err := secret.NewBox(testKey)
	require.NoError(t, err)

	sealed, err := box.Encrypt("APP_USR-123")
	require.NoError(t, err)

	parts := strings.Split(sealed, ":")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 32)
	assert.Len(t, parts[1], 32)
	assert.True(t, secret.IsSealed(sealed))

	plain, err := box.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "APP_USR-123", plain)
}

func TestBox_Decrypt(t *testing.T) {
	keyed, err := secret.NewBox(testKey)
	require.NoError(t, err)

	sealed, err := keyed.Encrypt("token")
	require.NoError(t, err)

	otherKey, err := secret.NewBox(strings.Repeat("k", 32))
	require.NoError(t, err)

	keyless, err := secret.NewBox("")
	require.NoError(t, err)

	tests := []struct {
		name    string
		box     secret.Box
		value   string
		want    string
		wantErr error
	}{
		{
			name:  "legacy plaintext passes through",
			box:   keyed,
			value: "APP_USR-legacy",
			want:  "APP_USR-legacy",
		},
		{
			name:  "three segments that are not hex pass through",
			box:   keyed,
			value: "a:b:c",
			want:  "a:b:c",
		},
		{
			name:  "plaintext without key passes through",
			box:   keyless,
			value: "plain",
			want:  "plain",
		},
		{
			name:    "sealed value without key",
			box:     keyless,
			value:   sealed,
			wantErr: secret.ErrDecryptionFailed,
		},
		{
			name:    "sealed value with wrong key",
			box:     otherKey,
			value:   sealed,
			wantErr: secret.ErrDecryptionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.box.Decrypt(tt.value)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewBox(t *testing.T) {
	_, err := secret.NewBox("short")
	assert.ErrorIs(t, err, secret.ErrInvalidKey)

	keyless, err := secret.NewBox("")
	require.NoError(t, err)

	_, err = keyless.Encrypt("x")
	assert.ErrorIs(t, err, secret.ErrKeyMissing)
}
