// Package main seeds a slot store with sample viewer records.
//
// Usage:
//
//	go run ./cmd/seed -backend badger -path ~/ContinueWatching/badger
//	go run ./cmd/seed -backend file -path ./slots -titles 12 -malformed
package main

import (
	"bytes"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/listenupapp/continue-watching/internal/config"
	"github.com/listenupapp/continue-watching/internal/di/providers"
	"github.com/listenupapp/continue-watching/internal/domain"
	"github.com/listenupapp/continue-watching/internal/records"
)

var (
	backend   = flag.String("backend", config.BackendBadger, "Storage backend: badger, sqlite, file or redis")
	path      = flag.String("path", "", "Storage path (default: ~/ContinueWatching/<backend>)")
	redisURL  = flag.String("redis-url", "", "Redis URL for the redis backend")
	titles    = flag.Int("titles", 8, "Number of titles to seed")
	seed      = flag.Uint64("seed", 0, "Random seed (default: current time)")
	malformed = flag.Bool("malformed", false, "Write a truncated watch history to exercise the empty-record path")
)

var sampleTitles = []struct {
	id      string
	english string
	romaji  string
}{
	{"16498", "Attack on Titan", "Shingeki no Kyojin"},
	{"154587", "Frieren: Beyond Journey's End", "Sousou no Frieren"},
	{"21", "One Piece", "One Piece"},
	{"113415", "Jujutsu Kaisen", "Jujutsu Kaisen"},
	{"101922", "Demon Slayer", "Kimetsu no Yaiba"},
	{"20958", "", "Shingeki no Kyojin OVA"},
	{"1535", "Death Note", "Death Note"},
	{"5114", "Fullmetal Alchemist: Brotherhood", "Hagane no Renkinjutsushi"},
	{"9253", "Steins;Gate", "Steins;Gate"},
	{"11061", "Hunter x Hunter", "Hunter x Hunter (2011)"},
	{"140960", "Spy x Family", "Spy x Family"},
	{"127230", "Chainsaw Man", "Chainsaw Man"},
}

type sampleEpisode struct {
	titleID string
	episode domain.Episode
}

func main() {
	flag.Parse()

	cfg, err := config.Load([]string{
		"-storage-backend", *backend,
		"-storage-path", *path,
		"-redis-url", *redisURL,
	})
	if err != nil {
		log.Fatalf("Failed to resolve storage: %v", err)
	}

	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(s, s>>1))

	location := cfg.Storage.Path
	if cfg.Storage.Backend == config.BackendRedis {
		location = cfg.Storage.RedisURL
	}
	fmt.Printf("Opening %s store at: %s\n", cfg.Storage.Backend, location)

	slots, err := providers.OpenSlotStore(context.Background(), cfg.Storage, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer slots.Close()

	count := min(*titles, len(sampleTitles))
	history, visited, progress := generate(rng, count)

	historyJSON, err := encodeHistory(history)
	if err != nil {
		log.Fatalf("Failed to encode watch history: %v", err)
	}
	if *malformed {
		historyJSON = historyJSON[:len(historyJSON)/2]
	}
	visitedJSON, err := json.Marshal(visited, json.Deterministic(true))
	if err != nil {
		log.Fatalf("Failed to encode last visited: %v", err)
	}
	progressJSON, err := json.Marshal(progress, json.Deterministic(true))
	if err != nil {
		log.Fatalf("Failed to encode playback progress: %v", err)
	}

	ctx := context.Background()
	for _, w := range []struct {
		slot string
		data []byte
	}{
		{records.SlotWatchHistory, historyJSON},
		{records.SlotLastVisited, visitedJSON},
		{records.SlotPlaybackProgress, progressJSON},
	} {
		if err := slots.PutSlot(ctx, w.slot, w.data); err != nil {
			log.Fatalf("Failed to write %s: %v", w.slot, err)
		}
		fmt.Printf("  wrote %-20s %6d bytes\n", w.slot, len(w.data))
	}

	fmt.Printf("\nSeeded %d titles (seed %d)\n", count, s)
	if *malformed {
		fmt.Println("Watch history was truncated; the continue-watching list will be empty.")
	}
}

// generate builds records for the first n sample titles. Some titles get no
// visit record or no progress so every fallback path shows up.
func generate(rng *rand.Rand, n int) ([][]sampleEpisode, domain.LastVisited, domain.PlaybackProgress) {
	history := make([][]sampleEpisode, 0, n)
	visited := domain.LastVisited{}
	progress := domain.PlaybackProgress{}

	now := time.Now()
	for i := range n {
		t := sampleTitles[i]

		watched := 1 + rng.IntN(6)
		first := 1 + rng.IntN(20)
		eps := make([]sampleEpisode, 0, watched)
		for j := range watched {
			number := first + j
			ep := domain.Episode{
				ID:     fmt.Sprintf("%s-%d", t.id, number),
				Number: float64(number),
				Image:  fmt.Sprintf("https://img.example/%s/%d.jpg", t.id, number),
			}
			if rng.IntN(2) == 0 {
				ep.Title = fmt.Sprintf("Episode %d", number)
			}
			eps = append(eps, sampleEpisode{titleID: t.id, episode: ep})
		}
		history = append(history, eps)

		// Every fourth title has never been visited.
		if i%4 != 3 {
			visited[t.id] = domain.LastVisit{
				Timestamp:    now.Add(-time.Duration(rng.IntN(14*24)) * time.Hour).UnixMilli(),
				TitleEnglish: t.english,
				TitleRomaji:  t.romaji,
			}
		}

		last := eps[len(eps)-1].episode
		if rng.IntN(3) > 0 {
			progress[last.ID] = domain.EpisodeProgress{PlaybackPercentage: float64(rng.IntN(101))}
		}
	}
	return history, visited, progress
}

// encodeHistory writes the watch history object with titles in the order
// they were generated, since that order breaks recency ties.
func encodeHistory(history [][]sampleEpisode) ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)

	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return nil, err
	}
	for _, eps := range history {
		if err := enc.WriteToken(jsontext.String(eps[0].titleID)); err != nil {
			return nil, err
		}
		list := make([]domain.Episode, 0, len(eps))
		for _, e := range eps {
			list = append(list, e.episode)
		}
		if err := json.MarshalEncode(enc, list); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteToken(jsontext.EndObject); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
