package securestore

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/storage"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(opts Options) (*Store, *storage.MemoryStore) {
	backend := storage.NewMemoryStore()
	return New(backend, opts), backend
}

func TestSetAndGetItem(t *testing.T) {
	s, backend := newTestStore(Options{})

	require.NoError(t, s.SetItem("chains", item{Name: "Morning", Count: 2}))

	var got item
	found, err := s.GetItem("chains", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, item{Name: "Morning", Count: 2}, got)

	raw, _, _ := backend.Get("chains")
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, `{"name":"Morning","count":2}`, env.Data)
	assert.Equal(t, RollingChecksum{}.Sum(env.Data), env.Checksum)
	assert.Len(t, env.Nonce, 32)
	assert.NotZero(t, env.Timestamp)
}

func TestNonceUnique(t *testing.T) {
	s, backend := newTestStore(Options{})
	require.NoError(t, s.SetItem("a", 1))
	require.NoError(t, s.SetItem("b", 1))

	nonce := func(key string) string {
		raw, _, _ := backend.Get(key)
		var env envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env.Nonce
	}
	assert.NotEqual(t, nonce("a"), nonce("b"))
}

func TestGetItemMissing(t *testing.T) {
	s, _ := newTestStore(Options{})
	var got item
	found, err := s.GetItem("stats", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidKeys(t *testing.T) {
	s, _ := newTestStore(Options{})
	for _, key := range []string{"", "has space", "dot.key", "slash/key", strings.Repeat("k", 101)} {
		err := s.SetItem(key, 1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidKey, key)

		_, err = s.GetItem(key, new(int))
		assert.ErrorIs(t, err, apperrors.ErrInvalidKey, key)

		assert.ErrorIs(t, s.RemoveItem(key), apperrors.ErrInvalidKey, key)
	}
	assert.NoError(t, s.SetItem(strings.Repeat("k", 100), 1))
}

func TestValueTooLarge(t *testing.T) {
	s, backend := newTestStore(Options{})
	big := strings.Repeat("x", 5*1024*1024)

	err := s.SetItem("chains", big)
	assert.ErrorIs(t, err, ErrValueTooLarge)
	assert.ErrorIs(t, err, apperrors.ErrSizeLimit)

	_, ok, _ := backend.Get("chains")
	assert.False(t, ok)
}

func TestCorruptChecksumSelfHeals(t *testing.T) {
	s, backend := newTestStore(Options{})
	require.NoError(t, s.SetItem("chains", item{Name: "Morning"}))

	raw, _, _ := backend.Get("chains")
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	env.Checksum = "deadbeef"
	tampered, _ := json.Marshal(env)
	require.NoError(t, backend.Set("chains", tampered))

	var got item
	found, err := s.GetItem("chains", &got)
	require.NoError(t, err)
	assert.False(t, found)

	_, ok, _ := backend.Get("chains")
	assert.False(t, ok, "corrupted entry should be removed")
}

func TestCorruptEnvelopeSelfHeals(t *testing.T) {
	s, backend := newTestStore(Options{})
	require.NoError(t, backend.Set("stats", []byte("{not json")))

	found, err := s.GetItem("stats", new(item))
	require.NoError(t, err)
	assert.False(t, found)

	_, ok, _ := backend.Get("stats")
	assert.False(t, ok)
}

func TestUndecodableDataSelfHeals(t *testing.T) {
	s, backend := newTestStore(Options{})
	require.NoError(t, s.SetItem("stats", "just a string"))

	found, err := s.GetItem("stats", new(item))
	require.NoError(t, err)
	assert.False(t, found)

	_, ok, _ := backend.Get("stats")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s, backend := newTestStore(Options{MaxAge: time.Hour, Now: clock})

	require.NoError(t, s.SetItem("settings", item{Name: "x"}))

	now = now.Add(30 * time.Minute)
	found, err := s.GetItem("settings", new(item))
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(time.Hour)
	found, err = s.GetItem("settings", new(item))
	require.NoError(t, err)
	assert.False(t, found)

	_, ok, _ := backend.Get("settings")
	assert.False(t, ok)
}

func TestSetItems(t *testing.T) {
	s, _ := newTestStore(Options{})

	require.NoError(t, s.SetItems(map[string]any{
		"chains":   []item{{Name: "a"}},
		"userName": "Ada",
	}))

	var name string
	found, err := s.GetItem("userName", &name)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ada", name)
}

func TestSetItemsAllOrNothing(t *testing.T) {
	s, backend := newTestStore(Options{})

	err := s.SetItems(map[string]any{
		"chains":  []item{{Name: "a"}},
		"bad key": 1,
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidKey)

	keys, _ := backend.Keys()
	assert.Empty(t, keys)
}

func TestKeyedChecksumRejectsRollingEntries(t *testing.T) {
	backend := storage.NewMemoryStore()
	plain := New(backend, Options{})
	require.NoError(t, plain.SetItem("userName", "Ada"))

	keyed, err := NewKeyedChecksum(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	sealed := New(backend, Options{Checksummer: keyed})

	found, err := sealed.GetItem("userName", new(string))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReseal(t *testing.T) {
	backend := storage.NewMemoryStore()
	plain := New(backend, Options{})
	require.NoError(t, plain.SetItem("userName", "Ada"))
	require.NoError(t, plain.SetItem("chains", []item{{Name: "Morning", Count: 1}}))

	keyed, err := NewKeyedChecksum(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	sealed := New(backend, Options{Checksummer: keyed})

	n, err := sealed.Reseal(RollingChecksum{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var name string
	found, err := sealed.GetItem("userName", &name)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ada", name)

	var chains []item
	found, err = sealed.GetItem("chains", &chains)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []item{{Name: "Morning", Count: 1}}, chains)

	// running again leaves already sealed entries alone
	n, err = sealed.Reseal(RollingChecksum{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	found, err = sealed.GetItem("userName", &name)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestClearAndKeys(t *testing.T) {
	s, _ := newTestStore(Options{})
	require.NoError(t, s.SetItem("b", 1))
	require.NoError(t, s.SetItem("a", 1))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.RemoveItem("a"))
	keys, _ = s.Keys()
	assert.Equal(t, []string{"b"}, keys)

	require.NoError(t, s.Clear())
	keys, _ = s.Keys()
	assert.Empty(t, keys)
}

func TestVerifyDoesNotPurge(t *testing.T) {
	s, backend := newTestStore(Options{})
	require.NoError(t, s.SetItem("good", 1))
	require.NoError(t, backend.Set("bad", []byte(`{"data":"1","checksum":"0","timestamp":0,"nonce":"x"}`)))
	require.NoError(t, backend.Set("junk", []byte("not json")))

	bad, err := s.Verify()
	require.NoError(t, err)
	assert.Equal(t, []string{"bad", "junk"}, bad)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}
