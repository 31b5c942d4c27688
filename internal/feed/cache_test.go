package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/access-ci-org/Operations-Router-News/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []model.OutageRecord {
	return []model.OutageRecord{
		{ID: "xsede:1", OutageID: "A", ResourceID: "r1", OutageType: "Partial",
			Subject: "S", Content: "body", OutageStart: "2023-02-16T10:30:00Z", OutageEnd: ""},
		{ID: "xsede:2", OutageID: "B", ResourceID: "r2", OutageType: "Full",
			Subject: "T", OutageStart: "2023-02-17T00:00:00Z", OutageEnd: "2023-02-18T00:00:00Z"},
	}
}

func TestCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	records := sampleRecords()

	n, err := WriteCache(path, records)
	require.NoError(t, err)
	assert.Positive(t, n)

	got, err := ReadCache(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestCache_ByteForByteReproducible(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.json")
	p2 := filepath.Join(dir, "b.json")
	records := sampleRecords()

	_, err := WriteCache(p1, records)
	require.NoError(t, err)

	// 读回后再写：同一对象图必须产出完全相同的字节
	reread, err := ReadCache(p1)
	require.NoError(t, err)
	_, err = WriteCache(p2, reread)
	require.NoError(t, err)

	b1, err := os.ReadFile(p1)
	require.NoError(t, err)
	b2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestReadCache_MissingFile(t *testing.T) {
	_, err := ReadCache(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReadCache_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := ReadCache(path)
	assert.Error(t, err)
}
