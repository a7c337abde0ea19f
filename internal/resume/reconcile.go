// Package resume turns the client's watch records into the ordered list of
// episodes to continue watching.
//
// Reconcile is pure: it reads the records it is given, never mutates them, and
// returns freshly built entries on every call.
package resume

import (
	"cmp"
	"slices"

	"github.com/listenupapp/continue-watching/internal/domain"
)

// titleSource resolves a candidate title for a title ID. An empty result means
// the next source in the chain is tried.
type titleSource func(visit domain.LastVisit) string

// titleChain lists the title candidates, first non-empty wins.
var titleChain = []titleSource{
	func(v domain.LastVisit) string { return v.TitleEnglish },
	func(v domain.LastVisit) string { return v.TitleRomaji },
}

// progressSource resolves a candidate playback percentage for an episode.
type progressSource func(playback domain.PlaybackProgress, episodeID string) (float64, bool)

// progressChain lists the progress candidates, first hit wins.
var progressChain = []progressSource{
	func(p domain.PlaybackProgress, id string) (float64, bool) {
		prog, ok := p[id]
		return prog.PlaybackPercentage, ok
	},
}

// Reconcile builds one resume entry per title in history, most recently
// visited first. Titles without a visit timestamp sort as 0; ties keep the
// order of history.
func Reconcile(history domain.WatchHistory, lastVisited domain.LastVisited, playback domain.PlaybackProgress) []domain.ResumeEntry {
	type candidate struct {
		titleID string
		episode *domain.Episode
	}

	candidates := make([]candidate, 0, len(history))
	seen := make(map[string]struct{}, len(history))
	for _, h := range history {
		if _, dup := seen[h.TitleID]; dup {
			continue
		}
		last := h.Last()
		if last == nil {
			continue
		}
		seen[h.TitleID] = struct{}{}
		candidates = append(candidates, candidate{titleID: h.TitleID, episode: last})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(lastVisited.TimestampOf(b.titleID), lastVisited.TimestampOf(a.titleID))
	})

	entries := make([]domain.ResumeEntry, 0, len(candidates))
	for _, c := range candidates {
		animeTitle := ResolveTitle(lastVisited[c.titleID])
		entries = append(entries, domain.ResumeEntry{
			TitleID:            c.titleID,
			Episode:            c.episode,
			AnimeTitle:         animeTitle,
			DisplayTitle:       DisplayTitle(animeTitle, c.episode),
			PlaybackPercentage: ResolveProgress(playback, c.episode.ID),
		})
	}
	return entries
}

// ResolveTitle returns the English title, else the Romaji title, else "".
func ResolveTitle(visit domain.LastVisit) string {
	for _, source := range titleChain {
		if title := source(visit); title != "" {
			return title
		}
	}
	return ""
}

// ResolveProgress returns the stored playback percentage of an episode, or 0.
func ResolveProgress(playback domain.PlaybackProgress, episodeID string) float64 {
	for _, source := range progressChain {
		if pct, ok := source(playback, episodeID); ok {
			return pct
		}
	}
	return 0
}

// DisplayTitle joins the title and the episode title as "<title> - <episode>".
// Without an episode title the title is used alone.
func DisplayTitle(animeTitle string, episode *domain.Episode) string {
	if episode == nil || episode.Title == "" {
		return animeTitle
	}
	return animeTitle + " - " + episode.Title
}
