package domain

// MinVisualPercentage is the smallest progress width drawn for a resume entry,
// so an episode that was only just started still shows a sliver of progress.
const MinVisualPercentage = 5.0

// Episode is one watched episode as recorded by the client.
type Episode struct {
	ID     string `json:"id"`
	Number float64 `json:"number"`
	Title  string  `json:"title,omitempty"`
	Image  string  `json:"image"`
}

// TitleHistory is the watched episodes of one title, oldest first.
type TitleHistory struct {
	TitleID  string
	Episodes []*Episode
}

// Last returns the most recently watched episode, or nil if there is none.
func (h TitleHistory) Last() *Episode {
	if len(h.Episodes) == 0 {
		return nil
	}
	return h.Episodes[len(h.Episodes)-1]
}

// WatchHistory holds per-title watch history in the order the titles were
// first recorded.
type WatchHistory []TitleHistory

// LastVisit is what the client remembers about the last visit to a title.
// Every field is optional.
type LastVisit struct {
	Timestamp    int64  `json:"timestamp,omitempty"` // epoch millis
	TitleEnglish string `json:"titleEnglish,omitempty"`
	TitleRomaji  string `json:"titleRomaji,omitempty"`
}

// LastVisited maps title ID to its last visit.
type LastVisited map[string]LastVisit

// TimestampOf returns the last visit time for a title, or 0 when unknown.
func (v LastVisited) TimestampOf(titleID string) int64 {
	return v[titleID].Timestamp
}

// EpisodeProgress is the stored playback position of an episode.
type EpisodeProgress struct {
	PlaybackPercentage float64 `json:"playbackPercentage"`
}

// PlaybackProgress maps episode ID to its playback progress.
type PlaybackProgress map[string]EpisodeProgress

// Snapshot is the three client records read together for one derivation pass.
// The records are read independently and may disagree with each other.
type Snapshot struct {
	History     WatchHistory
	LastVisited LastVisited
	Playback    PlaybackProgress
}

// ResumeEntry is the episode to continue watching for one title.
// Entries are derived on every pass and never stored.
type ResumeEntry struct {
	TitleID            string   `json:"title_id"`
	Episode            *Episode `json:"episode"`
	AnimeTitle         string   `json:"anime_title"`
	DisplayTitle       string   `json:"display_title"`
	PlaybackPercentage float64  `json:"playback_percentage"`
}

// VisualPercentage is the progress width to draw. Only the drawing is
// floored; PlaybackPercentage keeps the true value.
func (e ResumeEntry) VisualPercentage() float64 {
	return max(e.PlaybackPercentage, MinVisualPercentage)
}
