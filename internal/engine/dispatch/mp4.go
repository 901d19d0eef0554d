package dispatch

import (
	"encoding/binary"

	"github.com/Cyclone1070/scribe/internal/provider/models"
)

// probeMP4 extracts best-effort duration and resolution from an MP4 payload
// by walking its box structure for mvhd and tkhd. It never fails hard: any
// payload it cannot make sense of just reports ok=false and the caller skips
// the metadata line.
func probeMP4(data []byte) (models.VideoMetadata, bool) {
	moov, ok := findBox(data, "moov")
	if !ok {
		return models.VideoMetadata{}, false
	}

	var meta models.VideoMetadata
	if mvhd, ok := findBox(moov, "mvhd"); ok && len(mvhd) >= 20 {
		// Version 0 layout: version/flags, ctime, mtime, timescale, duration.
		timescale := binary.BigEndian.Uint32(mvhd[12:16])
		duration := binary.BigEndian.Uint32(mvhd[16:20])
		if timescale > 0 {
			meta.DurationSeconds = float64(duration) / float64(timescale)
		}
	}

	// Width and height live in the first track header, as 16.16 fixed point.
	if trak, ok := findBox(moov, "trak"); ok {
		if tkhd, ok := findBox(trak, "tkhd"); ok && len(tkhd) >= 84 {
			meta.Width = int(binary.BigEndian.Uint32(tkhd[76:80]) >> 16)
			meta.Height = int(binary.BigEndian.Uint32(tkhd[80:84]) >> 16)
		}
	}

	if meta.DurationSeconds == 0 && meta.Width == 0 && meta.Height == 0 {
		return models.VideoMetadata{}, false
	}
	return meta, true
}

// findBox scans sibling boxes in data and returns the payload of the first
// box with the given four-character type.
func findBox(data []byte, boxType string) ([]byte, bool) {
	for len(data) >= 8 {
		size := binary.BigEndian.Uint32(data[0:4])
		if size < 8 || uint32(len(data)) < size {
			return nil, false
		}
		if string(data[4:8]) == boxType {
			return data[8:size], true
		}
		data = data[size:]
	}
	return nil, false
}
