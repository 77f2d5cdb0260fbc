package inkgallery

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *MetadataDB {
	t.Helper()
	db, err := NewMetadataDB(filepath.Join(t.TempDir(), "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAddImageIdempotent(t *testing.T) {
	db := newTestDB(t)

	id1, err := db.AddImage("sunset.jpg", "AAAA", time.Now())
	require.NoError(t, err)
	id2, err := db.AddImage("sunset.jpg", "AAAA", time.Now())
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	images, err := db.Images(nil)
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestHasSHA1(t *testing.T) {
	db := newTestDB(t)

	_, err := db.AddImage("a.png", "AAAA", time.Now())
	require.NoError(t, err)

	ok, err := db.HasSHA1("AAAA")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.HasSHA1("BBBB")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindByBasename(t *testing.T) {
	db := newTestDB(t)

	_, err := db.AddImage("sunset.jpg", "AAAA", time.Now())
	require.NoError(t, err)

	name, err := db.FindByBasename("sunset")
	require.NoError(t, err)
	assert.Equal(t, "sunset.jpg", name)

	name, err = db.FindByBasename("sunset.jpg")
	require.NoError(t, err)
	assert.Equal(t, "sunset.jpg", name)

	name, err = db.FindByBasename("dawn")
	require.NoError(t, err)
	assert.Empty(t, name)

	_, err = db.AddImage("trips/dawn.jpg", "BBBB", time.Now())
	require.NoError(t, err)

	name, err = db.FindByBasename("dawn")
	require.NoError(t, err)
	assert.Equal(t, "trips/dawn.jpg", name, "basename lookup reaches into subdirectories")
}

func TestUpdateImage(t *testing.T) {
	db := newTestDB(t)

	_, err := db.AddImage("a.png", "AAAA", time.Now())
	require.NoError(t, err)

	require.NoError(t, db.UpdateImage("a.png", "Title", "Description"))

	img, err := db.Image("a.png")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "Title", img.Title)
	assert.Equal(t, "Description", img.Description)

	assert.Error(t, db.UpdateImage("missing.png", "x", "y"))
}

func TestDeleteImageCascades(t *testing.T) {
	db := newTestDB(t)

	_, err := db.AddImage("a.png", "AAAA", time.Now())
	require.NoError(t, err)
	require.NoError(t, db.Tag("a.png", "nature"))

	require.NoError(t, db.DeleteImage("a.png"))

	img, err := db.Image("a.png")
	require.NoError(t, err)
	assert.Nil(t, img)
}

func TestTagsAndFiltering(t *testing.T) {
	db := newTestDB(t)

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		_, err := db.AddImage(name, name, time.Now())
		require.NoError(t, err)
	}

	require.NoError(t, db.Tag("a.png", "Nature"))
	require.NoError(t, db.Tag("a.png", "sky"))
	require.NoError(t, db.Tag("b.png", "nature"))

	tags, err := db.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"nature", "sky"}, tags, "tags are normalized to lower case")

	images, err := db.Images([]string{"nature"})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "a.png", images[0].Filename)
	assert.Equal(t, "b.png", images[1].Filename)

	images, err = db.Images([]string{"sky"})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, []string{"nature", "sky"}, images[0].Tags)

	require.NoError(t, db.Untag("a.png", "sky"))
	images, err = db.Images([]string{"sky"})
	require.NoError(t, err)
	assert.Empty(t, images)

	assert.Error(t, db.Tag("missing.png", "x"))
}

func TestNextImageWrapsAround(t *testing.T) {
	db := newTestDB(t)

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		_, err := db.AddImage(name, name, time.Now())
		require.NoError(t, err)
	}

	img, next, err := db.NextImage(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "b.png", img.Filename)
	assert.Equal(t, 1, next)

	img, next, err = db.NextImage(2, nil)
	require.NoError(t, err)
	assert.Equal(t, "a.png", img.Filename)
	assert.Equal(t, 0, next)
}

func TestRandomImageEmptyGallery(t *testing.T) {
	db := newTestDB(t)

	img, err := db.RandomImage(nil)
	require.NoError(t, err)
	assert.Nil(t, img)
}

func TestRandomImageHonorsTags(t *testing.T) {
	db := newTestDB(t)

	_, err := db.AddImage("a.png", "AAAA", time.Now())
	require.NoError(t, err)
	_, err = db.AddImage("b.png", "BBBB", time.Now())
	require.NoError(t, err)
	require.NoError(t, db.Tag("b.png", "pick"))

	for i := 0; i < 10; i++ {
		img, err := db.RandomImage([]string{"pick"})
		require.NoError(t, err)
		require.NotNil(t, img)
		assert.Equal(t, "b.png", img.Filename)
	}
}
