package transcript

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bingohall/bingo-client/internal/chat"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "transcript.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndRecentNewestFirst(t *testing.T) {
	s := setupStore(t)

	a := chat.Message{Player: chat.Author{Name: "ann", Color: "#f00"}, Body: "first"}
	b := chat.Message{Player: chat.Author{Name: "bob", Color: "#00f"}, Body: "second"}
	require.NoError(t, s.Append(a))
	require.NoError(t, s.Append(b))

	got, err := s.Recent(10)
	require.NoError(t, err)
	require.Equal(t, []chat.Message{b, a}, got)
}

func TestRecentHonorsLimit(t *testing.T) {
	s := setupStore(t)
	for _, body := range []string{"1", "2", "3"} {
		require.NoError(t, s.Append(chat.Message{Player: chat.Author{Name: "ann"}, Body: body}))
	}

	got, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "3", got[0].Body)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Append(chat.Message{Player: chat.Author{Name: "ann"}, Body: "hi"}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
