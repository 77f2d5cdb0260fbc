/*
Package inkgallery is a small gallery service that manages a collection of
images and serves device-ready renditions of them to e-ink display
hardware.
*/
package inkgallery

import (
	"log"

	"github.com/inkgallery/inkgallery/profile"
	"github.com/inkgallery/inkgallery/transcode"
)

// Gallery ties together the image metadata database, the display profile
// store and the transcoder.
type Gallery struct {
	db         *MetadataDB
	profiles   *profile.Store
	transcoder *transcode.Transcoder
	imagesDir  string
	logger     *log.Logger
}

// New returns a Gallery serving images from imagesDir.
func New(db *MetadataDB, profiles *profile.Store, imagesDir string, logger *log.Logger) *Gallery {
	return &Gallery{
		db:         db,
		profiles:   profiles,
		transcoder: transcode.New(),
		imagesDir:  imagesDir,
		logger:     logger,
	}
}

// DB returns the metadata database.
func (g *Gallery) DB() *MetadataDB {
	return g.db
}

// Profiles returns the display profile store.
func (g *Gallery) Profiles() *profile.Store {
	return g.profiles
}

// Close releases the underlying database.
func (g *Gallery) Close() error {
	return g.db.Close()
}
