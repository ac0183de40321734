package conversion

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/poinku/internal/models"
)

type memSettings struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *memSettings) GetSetting(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memSettings) PutSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string]string{}
	}
	s.m[key] = value
	return nil
}

func TestPolicy(t *testing.T) {
	ctx := context.Background()
	settings := &memSettings{}
	p := NewPolicy(settings, 0)

	d, err := p.Divisor(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultDivisor, d)

	require.NoError(t, p.SetDivisor(ctx, 10000))
	d, err = p.Divisor(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), d)

	for _, bad := range []int64{0, -5} {
		err := p.SetDivisor(ctx, bad)
		assert.ErrorIs(t, err, models.ErrValidation, "divisor %d", bad)
	}
	d, _ = p.Divisor(ctx)
	assert.Equal(t, int64(10000), d, "rejected writes must not change the divisor")
}

func TestPolicyMalformedSetting(t *testing.T) {
	settings := &memSettings{m: map[string]string{SettingKey: "abc"}}
	p := NewPolicy(settings, 5000)

	d, err := p.Divisor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5000), d)
}

func TestPolicyReadsStoredKey(t *testing.T) {
	// Rows written by the back office use this key.
	settings := &memSettings{m: map[string]string{"poin_divisor": "15000"}}
	p := NewPolicy(settings, 0)

	d, err := p.Divisor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(15000), d)

	require.NoError(t, p.SetDivisor(context.Background(), 20000))
	assert.Equal(t, "20000", settings.m["poin_divisor"])
}
