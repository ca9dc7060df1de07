package attachments

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/config"
)

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	info, err := m.Put(ctx, "k1", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)
	assert.EqualValues(t, 5, info.Size)

	_, err = m.Put(ctx, "k1", strings.NewReader("again"), "")
	assert.Error(t, err)

	got, body, err := m.Get(ctx, "k1")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "text/plain", got.ContentType)

	_, _, err = m.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	existed, err := m.Delete(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, existed)
	_, _, err = m.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	existed, err = m.Delete(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestNewKeyKeepsExtension(t *testing.T) {
	key := NewKey(7, "Scan.PDF")
	assert.True(t, strings.HasPrefix(key, "farms/7/notes/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotEqual(t, key, NewKey(7, "Scan.PDF"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.AttachmentsConfig{Driver: "ftp"})
	assert.Error(t, err)

	store, err := Open(context.Background(), config.AttachmentsConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)
}
