package library

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/jscyril/mp3deck/api"
	"github.com/jscyril/mp3deck/internal/player"
)

var _ player.TrackReader = (*MetadataReader)(nil)

// MetadataReader extracts metadata from audio files
type MetadataReader struct{}

// NewMetadataReader creates a new metadata reader
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// Read describes an audio file. Files without tags still produce a Track
// titled after the file name.
func (r *MetadataReader) Read(filePath string) (*api.Track, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	name := filepath.Base(filePath)
	track := &api.Track{
		ID:       generateTrackID(filePath),
		Title:    strings.TrimSuffix(name, filepath.Ext(name)),
		FilePath: filePath,
		FileName: name,
		Size:     info.Size(),
	}

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return track, nil
	}

	track.Title = getOrDefault(strings.TrimSpace(metadata.Title()), track.Title)
	track.Artist = strings.TrimSpace(metadata.Artist())
	track.Album = strings.TrimSpace(metadata.Album())
	track.Year = metadata.Year()
	return track, nil
}

// generateTrackID creates a stable ID for a track based on its file path
func generateTrackID(filePath string) string {
	hash := md5.Sum([]byte(filePath))
	return fmt.Sprintf("track-%x", hash[:8])
}

// getOrDefault returns the value if non-empty, otherwise returns the default
func getOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
