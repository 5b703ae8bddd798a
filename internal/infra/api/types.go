package api

import (
	"time"

	"github.com/cadenzafm/cadenza/internal/domain/playlist"
	"github.com/cadenzafm/cadenza/internal/domain/track"
)

// User represents the authenticated user's profile.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Wire DTOs. Field names follow the server's snake_case JSON;
// conversion to domain entities happens at this boundary only.

type trackDTO struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	ArtistID      int     `json:"artist_id"`
	ArtistName    string  `json:"artist_name"`
	Duration      float64 `json:"duration"` // Seconds; zero when unknown
	CoverImageURL string  `json:"cover_image_url"`
	AudioURL      string  `json:"audio_url"`
	IsFavorited   bool    `json:"is_favorited"`
}

type playlistDTO struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	CreatorID  int    `json:"creator_id"`
	CoverURL   string `json:"cover_url"`
	Privacy    string `json:"privacy"`
	TrackCount int    `json:"track_count"`
}

type playlistWithTracksDTO struct {
	playlistDTO
	Tracks []trackDTO `json:"tracks"`
}

func (d trackDTO) toDomain() track.Track {
	return track.Track{
		ID:         d.ID,
		Title:      d.Title,
		ArtistID:   d.ArtistID,
		ArtistName: d.ArtistName,
		Duration:   time.Duration(d.Duration * float64(time.Second)),
		CoverURL:   d.CoverImageURL,
		AudioURL:   d.AudioURL,
		Favorited:  d.IsFavorited,
	}
}

func (d playlistDTO) toDomain() playlist.Playlist {
	return playlist.Playlist{
		ID:         d.ID,
		Title:      d.Title,
		Privacy:    playlist.Privacy(d.Privacy),
		OwnerID:    d.CreatorID,
		CoverURL:   d.CoverURL,
		TrackCount: d.TrackCount,
	}
}

func (d playlistWithTracksDTO) toDomain() playlist.WithTracks {
	tracks := make([]track.Track, len(d.Tracks))
	for i, t := range d.Tracks {
		tracks[i] = t.toDomain()
	}
	p := d.playlistDTO.toDomain()
	p.TrackCount = len(tracks)
	return playlist.WithTracks{Playlist: p, Tracks: tracks}
}
