package inkgallery

import (
	"database/sql"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Image is one gallery entry together with its tags.
type Image struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SHA1        string    `json:"sha1"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Tags        []string  `json:"tags"`
}

// MetadataDB is the sqlite database holding image metadata and tags.
type MetadataDB struct {
	db *sql.DB
}

// NewMetadataDB opens (creating if necessary) the metadata database at
// file.
func NewMetadataDB(file string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, filename TEXT NOT NULL UNIQUE, title TEXT NOT NULL DEFAULT '', description TEXT NOT NULL DEFAULT '', sha1 TEXT NOT NULL, uploaded_at TIMESTAMP NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS tag (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image_tag (image_id INTEGER NOT NULL, tag_id INTEGER NOT NULL, PRIMARY KEY (image_id, tag_id), FOREIGN KEY(image_id) REFERENCES image(id) ON DELETE CASCADE, FOREIGN KEY(tag_id) REFERENCES tag(id) ON DELETE CASCADE)"); err != nil {
		return nil, err
	}

	return &MetadataDB{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (db *MetadataDB) Close() error {
	return db.db.Close()
}

// AddImage registers a gallery entry, returning its id. Re-adding an
// existing filename returns the existing id.
func (db *MetadataDB) AddImage(filename, sha1 string, uploadedAt time.Time) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM image WHERE filename = ?", filename).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO image (filename, sha1, uploaded_at) VALUES (?, ?, ?)", filename, sha1, uploadedAt)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// HasSHA1 reports whether an image with the given content hash is already
// registered.
func (db *MetadataDB) HasSHA1(sha1 string) (bool, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM image WHERE sha1 = ?", sha1).Scan(&id); err {
	case sql.ErrNoRows:
		return false, nil
	case nil:
		return true, nil
	default:
		return false, err
	}
}

// UpdateImage sets the title and description of an image.
func (db *MetadataDB) UpdateImage(filename, title, description string) error {
	result, err := db.db.Exec("UPDATE image SET title = ?, description = ? WHERE filename = ?", title, description, filename)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteImage removes an image and, via cascade, its tag associations.
func (db *MetadataDB) DeleteImage(filename string) error {
	_, err := db.db.Exec("DELETE FROM image WHERE filename = ?", filename)
	return err
}

// FindByBasename resolves a filename from its basename without extension,
// so panels can ask for "sunset" and receive "sunset.jpg", including
// entries registered under a subdirectory. An exact filename always
// matches. Returns the empty string when nothing matches.
func (db *MetadataDB) FindByBasename(basename string) (string, error) {
	var filename string
	switch err := db.db.QueryRow("SELECT filename FROM image WHERE filename = ? OR filename LIKE ? OR filename LIKE ? ORDER BY filename LIMIT 1", basename, basename+".%", "%/"+basename+".%").Scan(&filename); err {
	case sql.ErrNoRows:
		return "", nil
	case nil:
		return filename, nil
	default:
		return "", err
	}
}

// Image returns a single gallery entry with its tags, or nil if unknown.
func (db *MetadataDB) Image(filename string) (*Image, error) {
	var img Image
	switch err := db.db.QueryRow("SELECT id, filename, title, description, sha1, uploaded_at FROM image WHERE filename = ?", filename).Scan(&img.ID, &img.Filename, &img.Title, &img.Description, &img.SHA1, &img.UploadedAt); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
	default:
		return nil, err
	}

	tags, err := db.imageTags(img.ID)
	if err != nil {
		return nil, err
	}
	img.Tags = tags

	return &img, nil
}

func (db *MetadataDB) imageTags(imageID int64) ([]string, error) {
	rows, err := db.db.Query("SELECT t.name FROM image_tag AS it JOIN tag AS t ON it.tag_id = t.id WHERE it.image_id = ? ORDER BY t.name", imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}

	return tags, rows.Err()
}

// Images lists every gallery entry sorted by filename. When tags are
// given, only images carrying at least one of them are returned.
func (db *MetadataDB) Images(tags []string) ([]Image, error) {
	rows, err := db.db.Query("SELECT id, filename, title, description, sha1, uploaded_at FROM image ORDER BY filename")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.Filename, &img.Title, &img.Description, &img.SHA1, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range images {
		if images[i].Tags, err = db.imageTags(images[i].ID); err != nil {
			return nil, err
		}
	}

	if len(tags) == 0 {
		return images, nil
	}

	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			want[t] = struct{}{}
		}
	}

	var filtered []Image
	for _, img := range images {
		for _, t := range img.Tags {
			if _, ok := want[strings.ToLower(t)]; ok {
				filtered = append(filtered, img)
				break
			}
		}
	}

	return filtered, nil
}

// RandomImage picks one gallery entry at random, optionally restricted by
// tags. Returns nil when the (filtered) gallery is empty.
func (db *MetadataDB) RandomImage(tags []string) (*Image, error) {
	images, err := db.Images(tags)
	if err != nil || len(images) == 0 {
		return nil, err
	}
	return &images[rand.Intn(len(images))], nil
}

// NextImage returns the entry following current in filename order,
// wrapping around at the end, together with its index in the (filtered)
// listing. Returns nil when the listing is empty.
func (db *MetadataDB) NextImage(current int, tags []string) (*Image, int, error) {
	images, err := db.Images(tags)
	if err != nil || len(images) == 0 {
		return nil, 0, err
	}

	next := (current + 1) % len(images)
	if next < 0 {
		next += len(images)
	}
	return &images[next], next, nil
}

// Tag associates a tag with an image, creating the tag if needed.
func (db *MetadataDB) Tag(filename, tag string) error {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return fmt.Errorf("empty tag")
	}

	img, err := db.Image(filename)
	if err != nil {
		return err
	}
	if img == nil {
		return sql.ErrNoRows
	}

	var tagID int64
	switch err := db.db.QueryRow("SELECT id FROM tag WHERE name = ?", tag).Scan(&tagID); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO tag (name) VALUES (?)", tag)
		if err != nil {
			return err
		}
		if tagID, err = result.LastInsertId(); err != nil {
			return err
		}
	case nil:
	default:
		return err
	}

	_, err = db.db.Exec("INSERT OR IGNORE INTO image_tag (image_id, tag_id) VALUES (?, ?)", img.ID, tagID)
	return err
}

// Untag removes a tag from an image.
func (db *MetadataDB) Untag(filename, tag string) error {
	_, err := db.db.Exec("DELETE FROM image_tag WHERE image_id IN (SELECT id FROM image WHERE filename = ?) AND tag_id IN (SELECT id FROM tag WHERE name = ?)", filename, strings.ToLower(strings.TrimSpace(tag)))
	return err
}

// Tags lists every known tag name.
func (db *MetadataDB) Tags() ([]string, error) {
	rows, err := db.db.Query("SELECT name FROM tag ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}

	sort.Strings(tags)
	return tags, rows.Err()
}
