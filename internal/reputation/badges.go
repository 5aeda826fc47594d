package reputation

const (
	BadgeTrailStarter      = "Trail Starter"
	BadgeTrailMapper       = "Trail Mapper"
	BadgePathfinder        = "Pathfinder"
	BadgeCommunityVoice    = "Community Voice"
	BadgeTrailMentor       = "Trail Mentor"
	BadgeExplorer          = "Explorer"
	BadgeAdventurer        = "Adventurer"
	BadgeLegendaryWanderer = "Legendary Wanderer"
)

type badgeRule struct {
	threshold int64
	name      string
}

var objectBadges = []badgeRule{
	{1, BadgeTrailStarter},
	{5, BadgeTrailMapper},
	{20, BadgePathfinder},
}

var commentBadges = []badgeRule{
	{10, BadgeCommunityVoice},
	{50, BadgeTrailMentor},
}

var visitBadges = []badgeRule{
	{10, BadgeExplorer},
	{50, BadgeAdventurer},
	{100, BadgeLegendaryWanderer},
}

// unlockedBadges returns every badge whose counter threshold is met.
func unlockedBadges(objectsAdded, commentsPosted, locationsVisited int64) []string {
	var badges []string
	for _, rule := range objectBadges {
		if objectsAdded >= rule.threshold {
			badges = append(badges, rule.name)
		}
	}
	for _, rule := range commentBadges {
		if commentsPosted >= rule.threshold {
			badges = append(badges, rule.name)
		}
	}
	for _, rule := range visitBadges {
		if locationsVisited >= rule.threshold {
			badges = append(badges, rule.name)
		}
	}
	return badges
}

// mergeBadges unions newly unlocked badges into the achieved set. Badges
// are never revoked, so every already achieved badge survives.
func mergeBadges(achieved, unlocked []string) []string {
	seen := make(map[string]struct{}, len(achieved))
	merged := make([]string, 0, len(achieved)+len(unlocked))
	for _, b := range achieved {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		merged = append(merged, b)
	}
	for _, b := range unlocked {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		merged = append(merged, b)
	}
	return merged
}
