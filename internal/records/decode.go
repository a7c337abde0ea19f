package records

import (
	"bytes"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/listenupapp/continue-watching/internal/domain"
)

// The client writes its records with JSON.stringify and reads them with
// JSON.parse, so a repeated member name keeps its first position and takes
// its last value.
var decodeOpts = jsontext.AllowDuplicateNames(true)

// isBlank reports whether a slot holds nothing worth parsing.
func isBlank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// DecodeWatchHistory parses the watched-episodes record, keeping titles in
// the order they appear in the document.
// A blank or null record decodes to an empty history.
func DecodeWatchHistory(data []byte) (domain.WatchHistory, error) {
	if isBlank(data) {
		return nil, nil
	}

	dec := jsontext.NewDecoder(bytes.NewReader(data), decodeOpts)
	switch kind := dec.PeekKind(); kind {
	case 'n':
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return nil, expectEOF(dec)
	case '{':
	default:
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("watch history must be an object, got %v", kind)
	}

	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}

	var history domain.WatchHistory
	index := make(map[string]int)
	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		titleID := name.String()

		raw, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}

		var episodes []*domain.Episode
		if err := json.Unmarshal(raw, &episodes, decodeOpts); err != nil {
			return nil, fmt.Errorf("title %q: %w", titleID, err)
		}

		if i, ok := index[titleID]; ok {
			history[i].Episodes = episodes
			continue
		}
		index[titleID] = len(history)
		history = append(history, domain.TitleHistory{TitleID: titleID, Episodes: episodes})
	}

	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return history, nil
}

// lastVisitRecord accepts timestamps written as any JSON number.
type lastVisitRecord struct {
	Timestamp    float64 `json:"timestamp"`
	TitleEnglish string  `json:"titleEnglish"`
	TitleRomaji  string  `json:"titleRomaji"`
}

// DecodeLastVisited parses the last-anime-visited record.
func DecodeLastVisited(data []byte) (domain.LastVisited, error) {
	if isBlank(data) {
		return domain.LastVisited{}, nil
	}

	var raw map[string]*lastVisitRecord
	if err := json.Unmarshal(data, &raw, decodeOpts); err != nil {
		return nil, err
	}

	visited := make(domain.LastVisited, len(raw))
	for titleID, rec := range raw {
		if rec == nil {
			continue
		}
		visited[titleID] = domain.LastVisit{
			Timestamp:    int64(math.Trunc(rec.Timestamp)),
			TitleEnglish: rec.TitleEnglish,
			TitleRomaji:  rec.TitleRomaji,
		}
	}
	return visited, nil
}

// DecodePlaybackProgress parses the all_episode_times record.
func DecodePlaybackProgress(data []byte) (domain.PlaybackProgress, error) {
	if isBlank(data) {
		return domain.PlaybackProgress{}, nil
	}

	var raw map[string]*domain.EpisodeProgress
	if err := json.Unmarshal(data, &raw, decodeOpts); err != nil {
		return nil, err
	}

	progress := make(domain.PlaybackProgress, len(raw))
	for episodeID, rec := range raw {
		if rec == nil {
			continue
		}
		progress[episodeID] = *rec
	}
	return progress, nil
}

// expectEOF fails if anything but whitespace follows the top-level value.
func expectEOF(dec *jsontext.Decoder) error {
	_, err := dec.ReadToken()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	return errors.New("unexpected data after top-level value")
}
