package state

// RouteID names a view.
type RouteID int

const (
	RouteHome RouteID = iota
	RouteTrackTable
	RouteAlbumTracks
	RouteAlbumList
	RouteArtist
	RouteArtists
	RoutePodcasts
	RouteEpisodeTable
	RouteSearch
	RouteSelectDevice
	RouteRecentlyPlayed
	RouteMadeForYou
	RouteError
)

func (r RouteID) String() string {
	switch r {
	case RouteHome:
		return "home"
	case RouteTrackTable:
		return "track table"
	case RouteAlbumTracks:
		return "album tracks"
	case RouteAlbumList:
		return "album list"
	case RouteArtist:
		return "artist"
	case RouteArtists:
		return "artists"
	case RoutePodcasts:
		return "podcasts"
	case RouteEpisodeTable:
		return "episode table"
	case RouteSearch:
		return "search"
	case RouteSelectDevice:
		return "select device"
	case RouteRecentlyPlayed:
		return "recently played"
	case RouteMadeForYou:
		return "made for you"
	case RouteError:
		return "error"
	default:
		return "unknown"
	}
}

// ActiveBlock is the focused pane within a view.
type ActiveBlock int

const (
	BlockEmpty ActiveBlock = iota
	BlockLibrary
	BlockMyPlaylists
	BlockTrackTable
	BlockAlbumTracks
	BlockAlbumList
	BlockArtistBlock
	BlockArtists
	BlockPodcasts
	BlockEpisodeTable
	BlockSearchResults
	BlockSelectDevice
	BlockRecentlyPlayed
	BlockMadeForYou
	BlockError
)

// Route is one navigation frame.
type Route struct {
	ID    RouteID
	Block ActiveBlock
}

// HomeRoute is the root frame. It is never popped.
var HomeRoute = Route{ID: RouteHome, Block: BlockLibrary}
