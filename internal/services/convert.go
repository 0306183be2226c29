package services

import (
	"math"
	"strings"

	"github.com/desertthunder/tessera/internal/models"
	"github.com/samber/lo"
)

func imageWidth(img SpotifyImage) int {
	if img.Width == nil {
		return math.MaxInt
	}
	return *img.Width
}

// SmallestImage returns the URL of the narrowest image. Images without a width sort last.
func SmallestImage(images []SpotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return lo.MinBy(images, func(a, b SpotifyImage) bool {
		return imageWidth(a) < imageWidth(b)
	}).URL
}

// FirstImage returns the URL of the first image, or "".
func FirstImage(images []SpotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func joinArtists(artists []SpotifyArtist) string {
	return strings.Join(lo.Map(artists, func(a SpotifyArtist, _ int) string { return a.Name }), ", ")
}

// ToTrack converts a saved track to a [models.Track] using the smallest album image.
func ToTrack(t SpotifyTrack) models.Track {
	return models.Track{
		Title:   t.Name,
		Artists: joinArtists(t.Artists),
		ArtURL:  SmallestImage(t.Album.Images),
		PlayURI: t.URI,
	}
}

// TracksFromPage converts a saved-tracks page, preserving order.
func TracksFromPage(page *SpotifyPaginatedTracks) []models.Track {
	if page == nil {
		return nil
	}
	return lo.Map(page.Items, func(item SpotifySavedTrack, _ int) models.Track {
		return ToTrack(item.Track)
	})
}

// PlaylistTracksToModels converts playlist items, dropping removed tracks. Playlist art uses the first album image.
func PlaylistTracksToModels(items []SpotifyPlaylistTrack) []models.Track {
	return lo.FilterMap(items, func(item SpotifyPlaylistTrack, _ int) (models.Track, bool) {
		if item.Track == nil || item.Track.URI == "" {
			return models.Track{}, false
		}
		return models.Track{
			Title:   item.Track.Name,
			Artists: joinArtists(item.Track.Artists),
			ArtURL:  FirstImage(item.Track.Album.Images),
			PlayURI: item.Track.URI,
		}, true
	})
}

// ToPlaylist converts a simplified playlist.
func ToPlaylist(sp SpotifySimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:         sp.ID,
		Name:       sp.Name,
		Owner:      ownerName(sp.Owner),
		ImageURL:   FirstImage(sp.Images),
		TrackCount: sp.Tracks.Total,
	}
}

func playlistFromFull(sp *SpotifyPlaylist) models.Playlist {
	return models.Playlist{
		ID:         sp.ID,
		Name:       sp.Name,
		Owner:      ownerName(sp.Owner),
		ImageURL:   FirstImage(sp.Images),
		TrackCount: sp.Tracks.Total,
	}
}

func ownerName(o Owner) string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.ID
}
