// Package carousel presents the continue-watching list through an external
// carousel widget and keeps it in step with the viewport.
package carousel

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/continue-watching/internal/domain"
)

// Labels and selectors shared with the client.
const (
	HeadingText     = "CONTINUE WATCHING"
	HeadingID       = "continueWatchingTitle"
	CarouselLabel   = "Episodes carousel"
	ActionLabel     = "Continue Watching"
	PlayLabel       = "Play Episode"
	PrevLabel       = "Previous episode"
	NextLabel       = "Next episode"
	PrevControl     = ".swiper-button-prev"
	NextControl     = ".swiper-button-next"
	DefaultWatchURL = "/watch/"
)

// Fixed widget settings.
const (
	SpaceBetween         = 20
	TouchRatio           = 1.2
	DefaultAutoplayDelay = 3 * time.Second
)

// Navigator deep-links a title to its watch view.
type Navigator interface {
	Link(titleID string) string
}

// PathNavigator links titles under a path prefix, "/watch/<id>" by default.
type PathNavigator struct {
	Prefix string
}

// Link implements Navigator.
func (n PathNavigator) Link(titleID string) string {
	prefix := n.Prefix
	if prefix == "" {
		prefix = DefaultWatchURL
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + url.PathEscape(titleID)
}

// Autoplay configures automatic advancing.
type Autoplay struct {
	DelayMs              int64 `json:"delay"`
	DisableOnInteraction bool  `json:"disableOnInteraction"`
}

// Navigation names the previous/next controls.
type Navigation struct {
	PrevEl string `json:"prevEl"`
	NextEl string `json:"nextEl"`
}

// Settings is the configuration handed to the carousel widget.
type Settings struct {
	SpaceBetween  int        `json:"spaceBetween"`
	SlidesPerView int        `json:"slidesPerView"`
	Loop          bool       `json:"loop"`
	FreeMode      bool       `json:"freeMode"`
	GrabCursor    bool       `json:"grabCursor"`
	Keyboard      bool       `json:"keyboard"`
	TouchRatio    float64    `json:"touchRatio"`
	Autoplay      Autoplay   `json:"autoplay"`
	Navigation    Navigation `json:"navigation"`
}

// NewSettings returns the widget settings for a slide count.
func NewSettings(slidesPerView int, autoplayDelay time.Duration) Settings {
	if autoplayDelay <= 0 {
		autoplayDelay = DefaultAutoplayDelay
	}
	return Settings{
		SpaceBetween:  SpaceBetween,
		SlidesPerView: slidesPerView,
		Loop:          true,
		FreeMode:      true,
		GrabCursor:    true,
		Keyboard:      true,
		TouchRatio:    TouchRatio,
		Autoplay: Autoplay{
			DelayMs:              autoplayDelay.Milliseconds(),
			DisableOnInteraction: false,
		},
		Navigation: Navigation{
			PrevEl: PrevControl,
			NextEl: NextControl,
		},
	}
}

// Heading is the section heading.
type Heading struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Control is a previous/next button.
type Control struct {
	Selector string `json:"selector"`
	Label    string `json:"label"`
}

// Slide is one rendered resume entry.
type Slide struct {
	Key                string  `json:"key"`
	TitleID            string  `json:"titleId"`
	Href               string  `json:"href"`
	Label              string  `json:"label"`
	Image              string  `json:"image"`
	ImageAlt           string  `json:"imageAlt"`
	DisplayTitle       string  `json:"displayTitle"`
	EpisodeLabel       string  `json:"episodeLabel"`
	PlayLabel          string  `json:"playLabel"`
	ProgressWidth      float64 `json:"progressWidth"`
	PlaybackPercentage float64 `json:"playbackPercentage"`
}

// Frame is everything the carousel widget needs for one render.
type Frame struct {
	LabelledBy string   `json:"labelledBy"`
	Heading    *Heading `json:"heading,omitempty"`
	Label      string   `json:"label"`
	Slides     []Slide  `json:"slides"`
	Settings   Settings `json:"settings"`
	Prev       Control  `json:"prev"`
	Next       Control  `json:"next"`
}

// BuildFrame renders entries for a slide count. The heading is present only
// when there is something to continue.
func BuildFrame(entries []domain.ResumeEntry, slidesPerView int, nav Navigator, autoplayDelay time.Duration) Frame {
	if nav == nil {
		nav = PathNavigator{}
	}

	frame := Frame{
		LabelledBy: HeadingID,
		Label:      CarouselLabel,
		Slides:     make([]Slide, 0, len(entries)),
		Settings:   NewSettings(slidesPerView, autoplayDelay),
		Prev:       Control{Selector: PrevControl, Label: PrevLabel},
		Next:       Control{Selector: NextControl, Label: NextLabel},
	}
	if len(entries) > 0 {
		frame.Heading = &Heading{ID: HeadingID, Text: HeadingText}
	}

	for _, e := range entries {
		frame.Slides = append(frame.Slides, Slide{
			Key:                e.Episode.ID,
			TitleID:            e.TitleID,
			Href:               nav.Link(e.TitleID),
			Label:              ActionLabel + " " + e.DisplayTitle,
			Image:              e.Episode.Image,
			ImageAlt:           fmt.Sprintf("Cover for %s", e.AnimeTitle),
			DisplayTitle:       e.DisplayTitle,
			EpisodeLabel:       "Episode " + strconv.FormatFloat(e.Episode.Number, 'f', -1, 64),
			PlayLabel:          PlayLabel,
			ProgressWidth:      e.VisualPercentage(),
			PlaybackPercentage: e.PlaybackPercentage,
		})
	}
	return frame
}
