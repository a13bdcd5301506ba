// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

// News categories.
var NewsCategories = []string{"Institutional", "Tourism", "Events", "Cultural"}

// Stat types of about_stats rows.
const (
	StatLanding = "landing"
	StatPage    = "page"
)

// Cache groups. A write to any schema of a group invalidates the group.
const (
	GroupNews         = "news"
	GroupActivities   = "activities"
	GroupUnesco       = "unesco"
	GroupDestinations = "destinations"
	GroupHero         = "hero"
	GroupAbout        = "about"
	GroupTours        = "virtual-tours"
	GroupVisitAlgeria = "visit-algeria"
	GroupContacts     = "contacts"
)

func image() Field {
	return Field{Name: "image", Kind: Image, MaxLen: 500}
}

func displayOrder() Field {
	return Field{Name: "display_order", Kind: Int, Default: int64(0)}
}

func loc(name string, maxLen int) Field {
	return Field{Name: name, Kind: Localized, MaxLen: maxLen}
}

func rich(name string) Field {
	return Field{Name: name, Kind: LocalizedRich}
}

var (
	News = &Schema{
		Name:  "news",
		Table: "news",
		Label: "News article",
		Group: GroupNews,
		Fields: []Field{
			{Name: "title", Kind: Localized, Required: true, MaxLen: 255},
			{Name: "excerpt", Kind: Localized},
			{Name: "content", Kind: LocalizedRich, MinLen: 10},
			{Name: "category", Kind: Enum, Options: NewsCategories, Default: "Tourism"},
			image(),
			{Name: "author", Kind: Text, MaxLen: 100},
			{Name: "likes", Kind: Int, Default: int64(0), ReadOnly: true},
		},
		OrderBy:   "created_at DESC, id DESC",
		Paginated: true,
		Filter:    &Filter{Param: "category", Column: "category", All: []string{"All", "الكل"}},
	}

	Activities = &Schema{
		Name:  "activities",
		Table: "activities",
		Label: "Activity",
		Group: GroupActivities,
		Fields: []Field{
			{Name: "name", Kind: Localized, Required: true, MaxLen: 255},
			rich("description"),
			{Name: "date", Kind: Date},
			{Name: "tags", Kind: Tags},
			image(),
		},
		OrderBy:   "created_at DESC, id DESC",
		Paginated: true,
	}

	UnescoSites = &Schema{
		Name:  "unesco-sites",
		Table: "unesco_sites",
		Label: "UNESCO site",
		Group: GroupUnesco,
		Fields: []Field{
			{Name: "name", Kind: Localized, Required: true, MaxLen: 255},
			{Name: "year_inscribed", Kind: Int},
			image(),
			rich("description"),
		},
		OrderBy: "id ASC",
	}

	Destinations = &Schema{
		Name:  "destinations",
		Table: "destinations",
		Label: "Destination",
		Group: GroupDestinations,
		Fields: []Field{
			{Name: "name", Kind: Localized, Required: true, MaxLen: 255},
			image(),
			rich("description"),
		},
		OrderBy: "id ASC",
	}

	HeroSlides = &Schema{
		Name:  "hero",
		Table: "hero_slides",
		Label: "Hero slide",
		Group: GroupHero,
		Fields: []Field{
			{Name: "headline", Kind: Localized, Required: true, MaxLen: 255},
			loc("subtitle", 500),
			loc("button_text", 100),
			{Name: "button_link", Kind: URL, Label: "Button link", MaxLen: 500},
			image(),
			displayOrder(),
			{Name: "is_active", Kind: Bool, Default: true},
		},
		OrderBy: "display_order ASC, created_at DESC, id DESC",
	}

	AboutMissions = &Schema{
		Name:  "about-missions",
		Table: "about_missions",
		Label: "Mission",
		Group: GroupAbout,
		Fields: []Field{
			{Name: "mission", Kind: Localized, Required: true},
			displayOrder(),
		},
		OrderBy: "display_order ASC, id ASC",
	}

	AboutStats = &Schema{
		Name:  "about-stats",
		Table: "about_stats",
		Label: "Stat",
		Group: GroupAbout,
		Fields: []Field{
			{Name: "value", Kind: Localized, Required: true, MaxLen: 50},
			loc("label", 255),
			{Name: "stat_type", Kind: Enum, Label: "Stat type", Options: []string{StatLanding, StatPage}, Default: StatLanding},
			displayOrder(),
		},
		OrderBy: "display_order ASC, id ASC",
		Filter:  &Filter{Param: "type", Column: "stat_type"},
	}

	AboutPillars = &Schema{
		Name:  "about-pillars",
		Table: "about_pillars",
		Label: "Pillar",
		Group: GroupAbout,
		Fields: []Field{
			loc("label", 100),
			{Name: "title", Kind: Localized, Required: true, MaxLen: 255},
			rich("description"),
			displayOrder(),
		},
		OrderBy: "display_order ASC, id ASC",
	}

	AboutFAQs = &Schema{
		Name:  "about-faqs",
		Table: "about_faqs",
		Label: "FAQ",
		Group: GroupAbout,
		Fields: []Field{
			{Name: "question", Kind: Localized, Required: true, MaxLen: 500},
			rich("answer"),
			displayOrder(),
		},
		OrderBy: "display_order ASC, id ASC",
	}

	VirtualTours = &Schema{
		Name:  "virtual-tours",
		Table: "virtual_tours",
		Label: "Virtual tour",
		Group: GroupTours,
		Fields: []Field{
			{Name: "tour_id", Kind: Int, Label: "Tour ID", Required: true},
			{Name: "title", Kind: Localized, Required: true, MaxLen: 255},
			rich("description"),
			{Name: "tags", Kind: Tags},
			image(),
			loc("cta", 100),
		},
		OrderBy: "tour_id ASC, id ASC",
	}

	Contacts = &Schema{
		Name:  "contact",
		Table: "contacts",
		Label: "Contact message",
		Group: GroupContacts,
		Fields: []Field{
			{Name: "name", Kind: Text, Required: true, MaxLen: 255},
			{Name: "email", Kind: Email, Required: true, MaxLen: 255},
			{Name: "phone", Kind: Text, MaxLen: 50},
			{Name: "subject", Kind: Text, MaxLen: 255},
			{Name: "message", Kind: Text, Required: true, MaxLen: 5000},
		},
		OrderBy:      "created_at DESC, id DESC",
		Paginated:    true,
		DefaultLimit: 20,
		Private:      true,
	}

	AboutContent = &Schema{
		Name:  "about-content",
		Table: "about_content",
		Label: "About content",
		Group: GroupAbout,
		Fields: []Field{
			loc("tagline", 255),
			loc("headline", 255),
			rich("description"),
			loc("cta", 100),
			loc("hero_title", 255),
			loc("hero_sub", 500),
			loc("page_headline", 255),
			rich("page_description1"),
			rich("page_description2"),
			loc("pillars_title", 255),
			loc("faq_title", 255),
			loc("faq_sub", 500),
			{Name: "image1", Kind: Image, MaxLen: 500},
			{Name: "image2", Kind: Image, MaxLen: 500},
		},
		Singleton: true,
	}

	UnescoContent = &Schema{
		Name:  "unesco-content",
		Table: "unesco_content",
		Label: "UNESCO content",
		Group: GroupUnesco,
		Fields: []Field{
			loc("badge", 100),
			loc("headline", 255),
			rich("description"),
			loc("cta_explore", 100),
			loc("cta_learn", 100),
		},
		Singleton: true,
	}

	VisitAlgeriaContent = &Schema{
		Name:  "visit-algeria",
		Table: "visit_algeria_content",
		Label: "Visit Algeria content",
		Group: GroupVisitAlgeria,
		Fields: []Field{
			loc("badge", 100),
			loc("headline", 255),
			rich("description"),
			loc("explore_btn", 100),
			loc("banner_text", 255),
			{Name: "banner_image", Kind: Image, MaxLen: 500},
			{Name: "youtube_video_id", Kind: Text, Label: "YouTube video ID", MaxLen: 50},
			loc("destinations_title", 255),
			loc("destinations_subtitle", 255),
			loc("cta", 100),
		},
		Singleton: true,
	}
)

var registry = []*Schema{
	News, Activities, UnescoSites, Destinations, HeroSlides,
	AboutMissions, AboutStats, AboutPillars, AboutFAQs,
	VirtualTours, Contacts,
	AboutContent, UnescoContent, VisitAlgeriaContent,
}

func init() {
	for _, s := range registry {
		s.init()
	}
}

// All returns every registered schema.
func All() []*Schema {
	return registry
}

// Lookup finds a schema by name.
func Lookup(name string) (*Schema, bool) {
	for _, s := range registry {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
