package carousel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/continue-watching/internal/domain"
)

func sampleEntries() []domain.ResumeEntry {
	return []domain.ResumeEntry{
		{
			TitleID:            "frieren",
			Episode:            &domain.Episode{ID: "fr-3", Number: 3, Image: "fr3.jpg"},
			AnimeTitle:         "Frieren",
			DisplayTitle:       "Frieren",
			PlaybackPercentage: 0,
		},
		{
			TitleID:            "aot",
			Episode:            &domain.Episode{ID: "aot-5", Number: 5, Title: "Ep5", Image: "aot5.jpg"},
			AnimeTitle:         "Shingeki",
			DisplayTitle:       "Shingeki - Ep5",
			PlaybackPercentage: 42,
		},
	}
}

func TestBuildFrame_Empty(t *testing.T) {
	frame := BuildFrame(nil, 3, nil, 0)

	assert.Nil(t, frame.Heading, "heading must be suppressed when nothing to continue")
	assert.Empty(t, frame.Slides)
	assert.NotNil(t, frame.Slides)
	assert.Equal(t, 3, frame.Settings.SlidesPerView)
	assert.Equal(t, CarouselLabel, frame.Label)
}

func TestBuildFrame_Slides(t *testing.T) {
	frame := BuildFrame(sampleEntries(), 5, PathNavigator{}, 0)

	require.NotNil(t, frame.Heading)
	assert.Equal(t, "CONTINUE WATCHING", frame.Heading.Text)
	assert.Equal(t, HeadingID, frame.Heading.ID)
	assert.Equal(t, HeadingID, frame.LabelledBy)

	require.Len(t, frame.Slides, 2)

	first := frame.Slides[0]
	assert.Equal(t, "fr-3", first.Key)
	assert.Equal(t, "/watch/frieren", first.Href)
	assert.Equal(t, "Continue Watching Frieren", first.Label)
	assert.Equal(t, "Cover for Frieren", first.ImageAlt)
	assert.Equal(t, "Episode 3", first.EpisodeLabel)
	assert.Equal(t, 5.0, first.ProgressWidth)
	assert.Equal(t, 0.0, first.PlaybackPercentage)

	second := frame.Slides[1]
	assert.Equal(t, "Continue Watching Shingeki - Ep5", second.Label)
	assert.Equal(t, 42.0, second.ProgressWidth)
	assert.Equal(t, "aot5.jpg", second.Image)

	assert.Equal(t, Control{Selector: ".swiper-button-prev", Label: "Previous episode"}, frame.Prev)
	assert.Equal(t, Control{Selector: ".swiper-button-next", Label: "Next episode"}, frame.Next)
}

func TestBuildFrame_EpisodeLabel(t *testing.T) {
	tests := []struct {
		number float64
		want   string
	}{
		{1, "Episode 1"},
		{12, "Episode 12"},
		{6.5, "Episode 6.5"},
		{0, "Episode 0"},
	}
	for _, tt := range tests {
		entries := []domain.ResumeEntry{{TitleID: "t", Episode: &domain.Episode{ID: "e", Number: tt.number}}}
		frame := BuildFrame(entries, 2, nil, 0)
		require.Len(t, frame.Slides, 1)
		assert.Equal(t, tt.want, frame.Slides[0].EpisodeLabel)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings(4, 0)

	assert.Equal(t, Settings{
		SpaceBetween:  20,
		SlidesPerView: 4,
		Loop:          true,
		FreeMode:      true,
		GrabCursor:    true,
		Keyboard:      true,
		TouchRatio:    1.2,
		Autoplay:      Autoplay{DelayMs: 3000, DisableOnInteraction: false},
		Navigation:    Navigation{PrevEl: ".swiper-button-prev", NextEl: ".swiper-button-next"},
	}, s)

	assert.Equal(t, int64(1500), NewSettings(4, 1500*time.Millisecond).Autoplay.DelayMs)
}

func TestPathNavigator(t *testing.T) {
	tests := []struct {
		prefix string
		id     string
		want   string
	}{
		{"", "21", "/watch/21"},
		{"/watch/", "one piece", "/watch/one%20piece"},
		{"/app/watch", "a/b", "/app/watch/a%2Fb"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PathNavigator{Prefix: tt.prefix}.Link(tt.id))
	}
}
