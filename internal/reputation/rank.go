package reputation

type Rank string

const (
	RankNovice          Rank = "NOVICE"
	RankEnthusiast      Rank = "ENTHUSIAST"
	RankTrailSeeker     Rank = "TRAIL_SEEKER"
	RankAdvancedTrekker Rank = "ADVANCED_TREKKER"
	RankExpertHiker     Rank = "EXPERT_HIKER"
	RankMasterExplorer  Rank = "MASTER_EXPLORER"
)

// RankFromPoints maps a point total to a rank. Highest matching band wins.
// This is the single canonical threshold table; nothing else in the
// codebase may duplicate it.
func RankFromPoints(points int64) Rank {
	switch {
	case points >= 5000:
		return RankMasterExplorer
	case points >= 2000:
		return RankExpertHiker
	case points >= 1000:
		return RankAdvancedTrekker
	case points >= 500:
		return RankTrailSeeker
	case points >= 100:
		return RankEnthusiast
	default:
		return RankNovice
	}
}
