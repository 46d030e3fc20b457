package beatmap

// RankedStatus is the server-side ranked status of a beatmap, as used by the
// game client's score-listing endpoint.
//
// The same logical status is encoded differently by every upstream source we
// talk to, so each coding scheme gets its own conversion. Any code we do not
// recognize maps to StatusUpdateAvailable: the client will then re-request the
// map instead of trusting unknown input as a terminal state.
type RankedStatus int

const (
	// StatusInactive marks a locally submitted set that has not completed
	// submission yet.
	StatusInactive RankedStatus = -3
	// StatusNotSubmitted marks a map unknown to any server.
	StatusNotSubmitted RankedStatus = -1
	// StatusPending is the default state for submitted, unranked maps.
	StatusPending RankedStatus = 0
	// StatusUpdateAvailable tells the client a newer version exists.
	StatusUpdateAvailable RankedStatus = 1
	// StatusRanked maps award ranked score.
	StatusRanked RankedStatus = 2
	// StatusApproved maps behave like ranked but were approved manually.
	StatusApproved RankedStatus = 3
	// StatusQualified maps are queued for ranking.
	StatusQualified RankedStatus = 4
	// StatusLoved maps keep a leaderboard without awarding ranked pp.
	StatusLoved RankedStatus = 5
)

// String returns the label shown on map pages.
func (s RankedStatus) String() string {
	switch s {
	case StatusNotSubmitted:
		return "Unsubmitted"
	case StatusPending:
		return "Unranked"
	case StatusUpdateAvailable:
		return "Outdated"
	case StatusRanked:
		return "Ranked"
	case StatusApproved:
		return "Approved"
	case StatusQualified:
		return "Qualified"
	case StatusLoved:
		return "Loved"
	default:
		return "Unknown"
	}
}

// HasLeaderboard reports whether maps with this status keep a leaderboard.
func (s RankedStatus) HasLeaderboard() bool {
	return s == StatusRanked || s == StatusApproved || s == StatusLoved
}

// AwardsRankedPP reports whether scores on maps with this status award
// ranked pp.
func (s RankedStatus) AwardsRankedPP() bool {
	return s == StatusRanked || s == StatusApproved
}

// ToOsuAPI converts the value to the osu!api status code. Only statuses that
// exist in the api are mapped; everything else reports ok=false.
func (s RankedStatus) ToOsuAPI() (code int, ok bool) {
	switch s {
	case StatusPending:
		return 0, true
	case StatusRanked:
		return 1, true
	case StatusApproved:
		return 2, true
	case StatusQualified:
		return 3, true
	case StatusLoved:
		return 4, true
	default:
		return 0, false
	}
}

// StatusFromOsuAPI converts an osu!api status code. The api uses a wider
// range than we store: graveyard (-2) and wip (-1) both collapse to pending.
func StatusFromOsuAPI(code int) RankedStatus {
	switch code {
	case -2, -1, 0:
		return StatusPending
	case 1:
		return StatusRanked
	case 2:
		return StatusApproved
	case 3:
		return StatusQualified
	case 4:
		return StatusLoved
	default:
		return StatusUpdateAvailable
	}
}

// StatusFromDirect converts an osu!direct search status code.
func StatusFromDirect(code int) RankedStatus {
	switch code {
	case 0:
		return StatusRanked
	case 2:
		return StatusPending
	case 3:
		return StatusQualified
	case 5:
		return StatusPending // graveyard
	case 7:
		return StatusRanked // played before
	case 8:
		return StatusLoved
	default:
		return StatusUpdateAvailable
	}
}

// StatusFromLabel converts a lowercase string label.
func StatusFromLabel(label string) RankedStatus {
	switch label {
	case "pending":
		return StatusPending
	case "ranked":
		return StatusRanked
	case "approved":
		return StatusApproved
	case "qualified":
		return StatusQualified
	case "loved":
		return StatusLoved
	default:
		return StatusUpdateAvailable
	}
}
