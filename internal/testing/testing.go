// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/spt/internal/models"
)

// FakeClient is an in-memory test double for the engine's remote client.
//
// Canned responses are plain fields; containment answers come from the membership maps,
// which save and remove calls update. Every call is recorded by method name and fails with
// the error registered for that name in Errs.
type FakeClient struct {
	mu    sync.Mutex
	calls []string
	Errs  map[string]error

	PlaybackState   *models.Playback
	DeviceList      []models.Device
	Profile         *models.User
	PlaylistPage    models.Page[models.Playlist]
	PlaylistItems   models.Page[models.PlaylistItem]
	SavedTrackPage  models.Page[models.SavedTrack]
	SavedAlbumPage  models.Page[models.SavedAlbum]
	SavedShowPage   models.Page[models.SavedShow]
	FollowedPage    models.CursorPage[models.Artist]
	EpisodePage     models.Page[models.Episode]
	History         models.CursorPage[models.PlayHistory]
	AlbumDetail     *models.Album
	AlbumTrackPage  models.Page[models.Track]
	TrackDetail     *models.Track
	ShowDetail      *models.Show
	ArtistAlbumPage models.Page[models.SimplifiedAlbum]
	TopTracks       []models.Track
	Related         []models.Artist
	Recommended     []models.Track
	Results         models.SearchResults

	Liked             map[string]bool
	AlbumsSaved       map[string]bool
	ShowsSaved        map[string]bool
	ArtistsFollowed   map[string]bool
	PlaylistsFollowed map[string]bool

	Started     []models.PlayRequest
	Volumes     []int
	Seeks       []int
	Shuffles    []bool
	Repeats     []models.RepeatState
	Queued      []string
	Transfers   []string
	DeviceIDs   []string
	SearchKinds [][]models.Kind
	Markets     []string
	Limits      []int
}

// NewFakeClient returns a client with empty membership maps.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Errs:              map[string]error{},
		Liked:             map[string]bool{},
		AlbumsSaved:       map[string]bool{},
		ShowsSaved:        map[string]bool{},
		ArtistsFollowed:   map[string]bool{},
		PlaylistsFollowed: map[string]bool{},
	}
}

// Fail makes every later call to method return err.
func (f *FakeClient) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errs[method] = err
}

// Calls returns how many times method was called.
func (f *FakeClient) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// TotalCalls returns the number of calls to any method.
func (f *FakeClient) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// CallLog returns method names in call order.
func (f *FakeClient) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeClient) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	return f.Errs[method]
}

func (f *FakeClient) device(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeviceIDs = append(f.DeviceIDs, id)
}

func (f *FakeClient) contains(method string, set map[string]bool, ids []string) ([]bool, error) {
	if err := f.record(method); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	answers := make([]bool, len(ids))
	for i, id := range ids {
		answers[i] = set[id]
	}
	return answers, nil
}

func (f *FakeClient) mark(method string, set map[string]bool, ids []string, member bool) error {
	if err := f.record(method); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		set[id] = member
	}
	return nil
}

func (f *FakeClient) CurrentPlayback(ctx context.Context) (*models.Playback, error) {
	if err := f.record("CurrentPlayback"); err != nil {
		return nil, err
	}
	if f.PlaybackState == nil {
		return nil, nil
	}
	pb := *f.PlaybackState
	return &pb, nil
}

func (f *FakeClient) Devices(ctx context.Context) ([]models.Device, error) {
	if err := f.record("Devices"); err != nil {
		return nil, err
	}
	return f.DeviceList, nil
}

func (f *FakeClient) StartPlayback(ctx context.Context, deviceID string, req models.PlayRequest) error {
	if err := f.record("StartPlayback"); err != nil {
		return err
	}
	f.device(deviceID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Started = append(f.Started, req)
	return nil
}

func (f *FakeClient) Pause(ctx context.Context, deviceID string) error {
	f.device(deviceID)
	return f.record("Pause")
}

func (f *FakeClient) Next(ctx context.Context, deviceID string) error {
	f.device(deviceID)
	return f.record("Next")
}

func (f *FakeClient) Previous(ctx context.Context, deviceID string) error {
	f.device(deviceID)
	return f.record("Previous")
}

func (f *FakeClient) Seek(ctx context.Context, deviceID string, positionMs int) error {
	if err := f.record("Seek"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Seeks = append(f.Seeks, positionMs)
	return nil
}

func (f *FakeClient) SetVolume(ctx context.Context, deviceID string, percent int) error {
	if err := f.record("SetVolume"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Volumes = append(f.Volumes, percent)
	return nil
}

func (f *FakeClient) SetShuffle(ctx context.Context, deviceID string, state bool) error {
	if err := f.record("SetShuffle"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Shuffles = append(f.Shuffles, state)
	return nil
}

func (f *FakeClient) SetRepeat(ctx context.Context, deviceID string, state models.RepeatState) error {
	if err := f.record("SetRepeat"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Repeats = append(f.Repeats, state)
	return nil
}

func (f *FakeClient) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	if err := f.record("TransferPlayback"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Transfers = append(f.Transfers, deviceID)
	return nil
}

func (f *FakeClient) AddToQueue(ctx context.Context, deviceID, uri string) error {
	if err := f.record("AddToQueue"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queued = append(f.Queued, uri)
	return nil
}

func (f *FakeClient) CurrentUser(ctx context.Context) (*models.User, error) {
	if err := f.record("CurrentUser"); err != nil {
		return nil, err
	}
	if f.Profile == nil {
		return &models.User{}, nil
	}
	u := *f.Profile
	return &u, nil
}

func (f *FakeClient) CurrentUserPlaylists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error) {
	if err := f.record("CurrentUserPlaylists"); err != nil {
		return nil, err
	}
	f.limit(limit)
	page := f.PlaylistPage
	page.Offset, page.Limit = offset, limit
	return &page, nil
}

func (f *FakeClient) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.PlaylistItem], error) {
	if err := f.record("PlaylistTracks"); err != nil {
		return nil, err
	}
	f.limit(limit)
	page := f.PlaylistItems
	page.Offset, page.Limit = offset, limit
	return &page, nil
}

func (f *FakeClient) SavedTracks(ctx context.Context, limit, offset int) (*models.Page[models.SavedTrack], error) {
	if err := f.record("SavedTracks"); err != nil {
		return nil, err
	}
	f.limit(limit)
	page := f.SavedTrackPage
	page.Offset, page.Limit = offset, limit
	return &page, nil
}

func (f *FakeClient) SavedAlbums(ctx context.Context, limit, offset int) (*models.Page[models.SavedAlbum], error) {
	if err := f.record("SavedAlbums"); err != nil {
		return nil, err
	}
	page := f.SavedAlbumPage
	page.Offset, page.Limit = offset, limit
	return &page, nil
}

func (f *FakeClient) SavedShows(ctx context.Context, limit, offset int) (*models.Page[models.SavedShow], error) {
	if err := f.record("SavedShows"); err != nil {
		return nil, err
	}
	page := f.SavedShowPage
	page.Offset, page.Limit = offset, limit
	return &page, nil
}

func (f *FakeClient) FollowedArtists(ctx context.Context, limit int, after string) (*models.CursorPage[models.Artist], error) {
	if err := f.record("FollowedArtists"); err != nil {
		return nil, err
	}
	page := f.FollowedPage
	page.Limit = limit
	return &page, nil
}

func (f *FakeClient) ShowEpisodes(ctx context.Context, showID string, limit, offset int) (*models.Page[models.Episode], error) {
	if err := f.record("ShowEpisodes"); err != nil {
		return nil, err
	}
	page := f.EpisodePage
	page.Offset, page.Limit = offset, limit
	return &page, nil
}

func (f *FakeClient) RecentlyPlayed(ctx context.Context, limit int) (*models.CursorPage[models.PlayHistory], error) {
	if err := f.record("RecentlyPlayed"); err != nil {
		return nil, err
	}
	page := f.History
	return &page, nil
}

func (f *FakeClient) Album(ctx context.Context, albumID string) (*models.Album, error) {
	if err := f.record("Album"); err != nil {
		return nil, err
	}
	if f.AlbumDetail == nil {
		return &models.Album{SimplifiedAlbum: models.SimplifiedAlbum{ID: albumID}}, nil
	}
	a := *f.AlbumDetail
	return &a, nil
}

func (f *FakeClient) AlbumTracks(ctx context.Context, albumID string, limit, offset int) (*models.Page[models.Track], error) {
	if err := f.record("AlbumTracks"); err != nil {
		return nil, err
	}
	page := f.AlbumTrackPage
	page.Offset, page.Limit = offset, limit
	return &page, nil
}

func (f *FakeClient) Track(ctx context.Context, trackID string) (*models.Track, error) {
	if err := f.record("Track"); err != nil {
		return nil, err
	}
	if f.TrackDetail == nil {
		return &models.Track{ID: trackID, URI: models.BuildURI(models.KindTrack, trackID)}, nil
	}
	t := *f.TrackDetail
	return &t, nil
}

func (f *FakeClient) Show(ctx context.Context, showID string) (*models.Show, error) {
	if err := f.record("Show"); err != nil {
		return nil, err
	}
	if f.ShowDetail == nil {
		return &models.Show{ID: showID}, nil
	}
	s := *f.ShowDetail
	return &s, nil
}

func (f *FakeClient) ArtistAlbums(ctx context.Context, artistID string, limit int) (*models.Page[models.SimplifiedAlbum], error) {
	if err := f.record("ArtistAlbums"); err != nil {
		return nil, err
	}
	page := f.ArtistAlbumPage
	return &page, nil
}

func (f *FakeClient) ArtistTopTracks(ctx context.Context, artistID, market string) ([]models.Track, error) {
	if err := f.record("ArtistTopTracks"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Markets = append(f.Markets, market)
	return f.TopTracks, nil
}

func (f *FakeClient) RelatedArtists(ctx context.Context, artistID string) ([]models.Artist, error) {
	if err := f.record("RelatedArtists"); err != nil {
		return nil, err
	}
	return f.Related, nil
}

func (f *FakeClient) Recommendations(ctx context.Context, seeds models.RecommendationSeeds, limit int) ([]models.Track, error) {
	if err := f.record("Recommendations"); err != nil {
		return nil, err
	}
	return f.Recommended, nil
}

func (f *FakeClient) Search(ctx context.Context, query string, kinds []models.Kind, limit, offset int) (*models.SearchResults, error) {
	f.mu.Lock()
	f.SearchKinds = append(f.SearchKinds, kinds)
	f.mu.Unlock()
	f.limit(limit)

	method := "Search"
	if len(kinds) == 1 {
		method = "Search:" + string(kinds[0])
	}
	if err := f.record(method); err != nil {
		return nil, err
	}
	res := f.Results
	return &res, nil
}

func (f *FakeClient) ContainsSavedTracks(ctx context.Context, ids []string) ([]bool, error) {
	return f.contains("ContainsSavedTracks", f.Liked, ids)
}

func (f *FakeClient) ContainsSavedAlbums(ctx context.Context, ids []string) ([]bool, error) {
	return f.contains("ContainsSavedAlbums", f.AlbumsSaved, ids)
}

func (f *FakeClient) ContainsSavedShows(ctx context.Context, ids []string) ([]bool, error) {
	return f.contains("ContainsSavedShows", f.ShowsSaved, ids)
}

func (f *FakeClient) ContainsFollowedArtists(ctx context.Context, ids []string) ([]bool, error) {
	return f.contains("ContainsFollowedArtists", f.ArtistsFollowed, ids)
}

func (f *FakeClient) SaveTracks(ctx context.Context, ids []string) error {
	return f.mark("SaveTracks", f.Liked, ids, true)
}

func (f *FakeClient) RemoveSavedTracks(ctx context.Context, ids []string) error {
	return f.mark("RemoveSavedTracks", f.Liked, ids, false)
}

func (f *FakeClient) SaveAlbums(ctx context.Context, ids []string) error {
	return f.mark("SaveAlbums", f.AlbumsSaved, ids, true)
}

func (f *FakeClient) RemoveSavedAlbums(ctx context.Context, ids []string) error {
	return f.mark("RemoveSavedAlbums", f.AlbumsSaved, ids, false)
}

func (f *FakeClient) SaveShows(ctx context.Context, ids []string) error {
	return f.mark("SaveShows", f.ShowsSaved, ids, true)
}

func (f *FakeClient) RemoveSavedShows(ctx context.Context, ids []string) error {
	return f.mark("RemoveSavedShows", f.ShowsSaved, ids, false)
}

func (f *FakeClient) FollowArtists(ctx context.Context, ids []string) error {
	return f.mark("FollowArtists", f.ArtistsFollowed, ids, true)
}

func (f *FakeClient) UnfollowArtists(ctx context.Context, ids []string) error {
	return f.mark("UnfollowArtists", f.ArtistsFollowed, ids, false)
}

func (f *FakeClient) PlaylistFollowedBy(ctx context.Context, playlistID, userID string) (bool, error) {
	if err := f.record("PlaylistFollowedBy"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PlaylistsFollowed[playlistID], nil
}

func (f *FakeClient) FollowPlaylist(ctx context.Context, playlistID string) error {
	return f.mark("FollowPlaylist", f.PlaylistsFollowed, []string{playlistID}, true)
}

func (f *FakeClient) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	return f.mark("UnfollowPlaylist", f.PlaylistsFollowed, []string{playlistID}, false)
}

func (f *FakeClient) RefreshToken(ctx context.Context) error {
	return f.record("RefreshToken")
}

func (f *FakeClient) limit(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Limits = append(f.Limits, n)
}

// FakeCache records cached tracks and optionally fails.
type FakeCache struct {
	mu     sync.Mutex
	Tracks []models.Track
	Err    error
}

func (c *FakeCache) CacheTracks(ctx context.Context, tracks []models.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Tracks = append(c.Tracks, tracks...)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
