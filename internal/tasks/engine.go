package tasks

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
)

// DefaultSeekDelay is the pause between a seek and the playback refetch, giving the
// remote player time to apply the new position.
const DefaultSeekDelay = time.Second

// EngineOpts configures optional engine dependencies.
type EngineOpts struct {
	Logger    *log.Logger   // Defaults to a stderr logger
	Cache     TrackCacher   // Optional track persistence
	SeekDelay time.Duration // Zero disables the pause
	Updates   chan<- Update // Optional lifecycle events
}

// Engine executes intents against a remote [Client] and writes the results to a [state.Store].
//
// Intents run one at a time. Handlers finish every remote call before taking the store lock,
// then write their results in a single [state.Store.Update].
type Engine struct {
	client    Client
	store     *state.Store
	logger    *log.Logger
	cache     TrackCacher
	seekDelay time.Duration
	updates   chan<- Update

	execMu sync.Mutex
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an engine bound to client and store.
func NewEngine(client Client, store *state.Store, opts EngineOpts) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(os.Stderr)
	}
	return &Engine{
		client:    client,
		store:     store,
		logger:    logger,
		cache:     opts.Cache,
		seekDelay: opts.SeekDelay,
		updates:   opts.Updates,
		sleep:     sleepContext,
	}
}

// Store returns the store the engine writes to.
func (e *Engine) Store() *state.Store { return e.store }

// Execute runs one intent to completion.
//
// The loading flag is set for the duration of the call. Any returned error has also been
// recorded as the store's last error.
func (e *Engine) Execute(ctx context.Context, in Intent) error {
	e.execMu.Lock()
	defer e.execMu.Unlock()

	id := shared.GenerateID()
	name := Name(in)
	started := time.Now()
	logger := shared.WithLogger(e.logger, "intent", name, "id", id)

	e.store.Update(func(s *state.State) { s.SetLoading(true) })
	defer e.store.Update(func(s *state.State) { s.SetLoading(false) })

	e.notify(startedUpdate(id, name))
	logger.Debug("executing intent")

	err := e.dispatch(ctx, in)
	if err != nil {
		err = e.fail(err)
		logger.Error("intent failed", "error", err, "elapsed", time.Since(started))
	} else {
		logger.Debug("intent completed", "elapsed", time.Since(started))
	}
	e.notify(finishedUpdate(id, name, started, err))
	return err
}

// dispatch routes every intent to its handler.
func (e *Engine) dispatch(ctx context.Context, in Intent) error {
	switch in := in.(type) {
	case FetchPlayback:
		return e.fetchPlayback(ctx)
	case StartPlayback:
		return e.startPlayback(ctx, in)
	case Resume:
		return e.startPlayback(ctx, StartPlayback{})
	case Pause:
		return e.pause(ctx)
	case TogglePlayback:
		return e.togglePlayback(ctx)
	case NextTrack:
		return e.nextTrack(ctx)
	case PreviousTrack:
		return e.previousTrack(ctx)
	case Seek:
		return e.seek(ctx, in)
	case SeekRelative:
		return e.seekRelative(ctx, in)
	case ChangeVolume:
		return e.changeVolume(ctx, in)
	case StepVolume:
		return e.stepVolume(ctx, in)
	case ToggleShuffle:
		return e.toggleShuffle(ctx)
	case CycleRepeat:
		return e.cycleRepeat(ctx)
	case TransferPlayback:
		return e.transferPlayback(ctx, in)
	case AddToQueue:
		return e.addToQueue(ctx, in)
	case FetchDevices:
		return e.fetchDevices(ctx, in)
	case SelectDevice:
		return e.selectDevice(in)
	case PopRoute:
		return e.popRoute(in)

	case FetchPlaylists:
		return e.fetchPlaylists(ctx, in)
	case FetchPlaylistTracks:
		return e.fetchPlaylistTracks(ctx, in)
	case FetchMadeForYouTracks:
		return e.fetchMadeForYouTracks(ctx, in)
	case FetchSavedTracks:
		return e.fetchSavedTracks(ctx, in)
	case FetchSavedAlbums:
		return e.fetchSavedAlbums(ctx, in)
	case FetchSavedShows:
		return e.fetchSavedShows(ctx, in)
	case FetchFollowedArtists:
		return e.fetchFollowedArtists(ctx, in)
	case FetchShowEpisodes:
		return e.fetchShowEpisodes(ctx, in)
	case FetchRecentlyPlayed:
		return e.fetchRecentlyPlayed(ctx)
	case MadeForYouSearchAndAdd:
		return e.madeForYouSearchAndAdd(ctx, in)

	case FetchAlbum:
		return e.fetchAlbum(ctx, in)
	case FetchAlbumTracks:
		return e.fetchAlbumTracks(ctx, in)
	case FetchAlbumForTrack:
		return e.fetchAlbumForTrack(ctx, in)
	case FetchArtist:
		return e.fetchArtist(ctx, in)
	case FetchShow:
		return e.fetchShow(ctx, in)
	case FetchUser:
		return e.fetchUser(ctx)
	case FetchRecommendations:
		return e.fetchRecommendations(ctx, in)
	case FetchRecommendationsForTrack:
		return e.fetchRecommendationsForTrack(ctx, in)

	case SearchAll:
		return e.searchAll(ctx, in)
	case UpdateSearchLimits:
		return e.updateSearchLimits(in)

	case CheckSavedTracks:
		return e.checkSavedTracks(ctx, in.IDs)
	case CheckSavedAlbums:
		return e.checkSavedAlbums(ctx, in.IDs)
	case CheckSavedShows:
		return e.checkSavedShows(ctx, in.IDs)
	case CheckFollowedArtists:
		return e.checkFollowedArtists(ctx, in.IDs)

	case ToggleSaveTrack:
		return e.toggleSaveTrack(ctx, in)
	case SetTrackSaved:
		return e.setTrackSaved(ctx, in)
	case ToggleSaveAlbum:
		return e.toggleSaveAlbum(ctx, in)
	case ToggleSaveShow:
		return e.toggleSaveShow(ctx, in)
	case ToggleFollowArtist:
		return e.toggleFollowArtist(ctx, in)
	case ToggleFollowPlaylist:
		return e.toggleFollowPlaylist(ctx, in)
	case ToggleLikeCurrent:
		return e.toggleLikeCurrent(ctx)
	case SetCurrentSaved:
		return e.setCurrentSaved(ctx, in)

	case RefreshAuthentication:
		return e.client.RefreshToken(ctx)

	default:
		return fmt.Errorf("%w: %T", shared.ErrUnknownIntent, in)
	}
}

// fail records err as the store's last error and returns it.
func (e *Engine) fail(err error) error {
	e.store.Update(func(s *state.State) { s.SetError(err) })
	return err
}

// enrich runs a follow-up query whose failure does not fail the intent.
func (e *Engine) enrich(what string, err error) {
	if err == nil {
		return
	}
	e.logger.Warn("enrichment failed", "query", what, "error", err)
	e.fail(err)
}

// cacheTracks offers tracks to the track cache; failures are logged and ignored.
func (e *Engine) cacheTracks(ctx context.Context, tracks []models.Track) {
	if e.cache == nil || len(tracks) == 0 {
		return
	}
	if err := e.cache.CacheTracks(ctx, tracks); err != nil {
		e.logger.Warn("failed to cache tracks", "count", len(tracks), "error", err)
	}
}

func (e *Engine) limits() state.SearchLimits {
	return e.store.Limits()
}

func requireID(what, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s id", shared.ErrMissingArgument, what)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func trackIDs(tracks []models.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func trackURIs(tracks []models.Track) []string {
	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.URI != "" {
			uris = append(uris, t.URI)
		}
	}
	return uris
}

// playlistTracks drops items whose track has been removed from the catalog.
func playlistTracks(items []models.PlaylistItem) []models.Track {
	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		if item.Track != nil {
			tracks = append(tracks, *item.Track)
		}
	}
	return tracks
}

func savedTracks(items []models.SavedTrack) []models.Track {
	tracks := make([]models.Track, len(items))
	for i, item := range items {
		tracks[i] = item.Track
	}
	return tracks
}
