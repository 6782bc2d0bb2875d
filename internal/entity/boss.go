package entity

// Boss is one tracked subject whose counter team page is scraped.
type Boss struct {
	ID  string
	URL string

	// HeaderStart and HeaderEnd bound the slice of the page's h2 headings that
	// label the table columns. Pages carry a different number of boilerplate
	// headings before the real ones, so the bounds are per boss.
	HeaderStart int
	HeaderEnd   int

	// BodySkip is the number of leading table bodies that are not part of the
	// counters table.
	BodySkip int
}

const pageBase = "https://pokemongohub.net/post/guide/"

// DefaultBosses returns the tracked bosses in display order.
func DefaultBosses() []Boss {
	return []Boss{
		{ID: "giovanni", URL: pageBase + "rocket-boss-giovanni-counters/", HeaderStart: 2, HeaderEnd: 7, BodySkip: 1},
		{ID: "arlo", URL: pageBase + "rocket-leader-arlo-counters/", HeaderStart: 1, HeaderEnd: 8, BodySkip: 1},
		{ID: "cliff", URL: pageBase + "rocket-leader-cliff-counters/", HeaderStart: 1, HeaderEnd: 8, BodySkip: 1},
		{ID: "sierra", URL: pageBase + "rocket-leader-sierra-counters/", HeaderStart: 1, HeaderEnd: 8, BodySkip: 1},
	}
}

// FindBoss looks up a boss by ID.
func FindBoss(bosses []Boss, id string) (Boss, bool) {
	for _, b := range bosses {
		if b.ID == id {
			return b, true
		}
	}
	return Boss{}, false
}
