package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const demoHostID = "550e8400-e29b-41d4-a716-446655440000"

func TestHostToken(t *testing.T) {
	tests := []struct {
		name   string
		hostID string
		want   string
	}{
		{"demo host", demoHostID, "nllvk0"},
		{"seven digit base36 is truncated", "a1b2c3d4-e5f6-7890-abcd-ef1234567890", "18v5qd"},
		{"second sample", "b2c3d4e5-f6a7-8901-bcde-f12345678901", "1dlmsx"},
		{"third sample", "c3d4e5f6-a7b8-9012-cdef-123456789012", "1ic3vg"},
		{"short rendering is padded", "00000001", "000001"},
		{"max value", "ffffffff-0000", "1z141z"},
		{"partial hex prefix", "12zz-0000", "00000i"},
		{"no hex digits", "zz", "000NaN"},
		{"empty", "", "000NaN"},
		{"bare hex prefix", "0x", "000NaN"},
		{"prefix without digits", "0xg", "000NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HostToken(tt.hostID)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, HostTokenLength)
		})
	}
}

func TestHostTokenDeterministic(t *testing.T) {
	assert.Equal(t, HostToken(demoHostID), HostToken(demoHostID))
}

func TestHostTokenCollidesAfterEighthHexDigit(t *testing.T) {
	// Only the first 8 hex characters contribute to the token.
	a := "550e8400-e29b-41d4-a716-446655440000"
	b := "550e8400-0000-0000-0000-000000000000"
	assert.Equal(t, HostToken(a), HostToken(b))
}

func TestSecretToken(t *testing.T) {
	assert.Equal(t, "3mhraq", SecretToken("jordan.rivera@email.com", 6))
	assert.Equal(t, "3mhraq", SecretToken("  Jordan.Rivera@Email.com ", 6), "input is normalised")
	assert.Equal(t, "000000", SecretToken("", 6))
	assert.Equal(t, "00002p", SecretToken("a", 0), "non-positive length falls back to 6")
	assert.Equal(t, "000000002p", SecretToken("a", 10))
}

func TestRoleTokensAreNamespaced(t *testing.T) {
	email := "jordan.rivera@email.com"
	assert.Equal(t, "4uf0fg", GuestToken(email))
	assert.Equal(t, "az3h8s", StaffToken(email))
	assert.Equal(t, "3mhraq", ManagerToken(email))
	assert.NotEqual(t, GuestToken(email), StaffToken(email))

	assert.Equal(t, "y1y155", GuestToken("emma.wilson@email.com"))
	assert.Equal(t, "lzj3hl", StaffToken("Elena.Martinez@company.com"))
}
