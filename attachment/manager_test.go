package attachment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mb = 1024 * 1024

func photos(n int, size int64) []File {
	files := make([]File, n)
	for i := range files {
		files[i] = File{Name: fmt.Sprintf("photo-%d.jpg", i), Handle: fmt.Sprintf("h%d", i), MIMEType: "image/jpeg", Size: size}
	}
	return files
}

func TestAddTruncatesToCap(t *testing.T) {
	m := NewManager(DefaultConfig())
	res, err := m.Add(photos(12, mb))
	require.NoError(t, err)

	assert.Len(t, res.Accepted, 10)
	require.Len(t, res.Rejected, 2)
	for _, r := range res.Rejected {
		assert.ErrorIs(t, r.Reason, ErrMaxFilesReached)
	}
	assert.Equal(t, "photo-10.jpg", res.Rejected[0].File.Name)
	assert.Equal(t, 10, m.Len())
}

func TestAddRejectsOversizedFile(t *testing.T) {
	m := NewManager(DefaultConfig())
	res, err := m.Add([]File{{Name: "clip.mp4", MIMEType: "video/mp4", Size: 11 * mb}})
	require.NoError(t, err)

	assert.Empty(t, res.Accepted)
	require.Len(t, res.Rejected, 1)
	assert.ErrorIs(t, res.Rejected[0].Reason, ErrFileTooLarge)
	assert.Equal(t, 0, m.Len())
}

func TestAddChecksType(t *testing.T) {
	m := NewManager(DefaultConfig())
	res, err := m.Add([]File{
		{Name: "notes.txt", MIMEType: "text/plain", Size: 10},
		{Name: "scan.pdf", MIMEType: "application/pdf", Size: 10},
		{Name: "img.PNG", MIMEType: "IMAGE/PNG; charset=binary", Size: 10},
		{Name: "unknown", MIMEType: "", Size: 10},
	})
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 2)
	require.Len(t, res.Rejected, 2)
	assert.ErrorIs(t, res.Rejected[0].Reason, ErrInvalidFileType)
	assert.ErrorIs(t, res.Rejected[1].Reason, ErrInvalidFileType)
}

func TestAddSizeBounds(t *testing.T) {
	m := NewManager(DefaultConfig())
	res, err := m.Add([]File{
		{Name: "empty.png", MIMEType: "image/png"},
		{Name: "edge.png", MIMEType: "image/png", Size: DefaultMaxSize},
		{Name: "broken.png", MIMEType: "image/png", Size: -1},
	})
	require.NoError(t, err)
	require.Len(t, res.Accepted, 2)
	assert.Equal(t, "empty.png", res.Accepted[0].Name)
	assert.Equal(t, "edge.png", res.Accepted[1].Name)
	require.Len(t, res.Rejected, 1)
	assert.ErrorIs(t, res.Rejected[0].Reason, ErrInvalidSize)
}

func TestExistingAttachmentsAreNeverEvicted(t *testing.T) {
	m := NewManager(Config{MaxAttachments: 2})
	_, err := m.Add(photos(2, 1))
	require.NoError(t, err)
	before := m.List()

	res, err := m.Add(photos(1, 1))
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	assert.Equal(t, before, m.List())
}

func TestWildcardAccept(t *testing.T) {
	m := NewManager(Config{Accept: []string{"*/*"}})
	res, err := m.Add([]File{{Name: "a.zip", MIMEType: "application/zip", Size: 1}})
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 1)
}

func TestRemove(t *testing.T) {
	m := NewManager(DefaultConfig())
	res, err := m.Add(photos(3, 1))
	require.NoError(t, err)

	require.NoError(t, m.Remove(1))
	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, res.Accepted[0].ID, list[0].ID)
	assert.Equal(t, res.Accepted[2].ID, list[1].ID)

	assert.ErrorIs(t, m.Remove(2), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.Remove(-1), ErrIndexOutOfRange)
}

func TestBusyBlocksMutation(t *testing.T) {
	m := NewManager(DefaultConfig())
	_, err := m.Add(photos(1, 1))
	require.NoError(t, err)

	m.SetBusy(true)
	_, err = m.Add(photos(1, 1))
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, m.Remove(0), ErrBusy)
	assert.Equal(t, 1, m.Len())

	m.SetBusy(false)
	assert.NoError(t, m.Remove(0))
}

func TestListIsACopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	_, err := m.Add(photos(1, 1))
	require.NoError(t, err)
	list := m.List()
	list[0].Name = "changed"
	assert.Equal(t, "photo-0.jpg", m.List()[0].Name)
}

func TestRestoreTruncatesToCap(t *testing.T) {
	m := NewManager(Config{MaxAttachments: 1})
	m.Restore([]Attachment{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, []Attachment{{ID: "a"}}, m.List())
}

func TestNewManagerDefaults(t *testing.T) {
	cfg := NewManager(Config{}).Config()
	assert.Equal(t, DefaultConfig(), cfg)
}
