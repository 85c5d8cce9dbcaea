package model

type Section string

const (
	SectionHomeVillage    Section = "home-village"
	SectionLaboratory     Section = "laboratory"
	SectionPetHouse       Section = "pet-house"
	SectionBuilderBase    Section = "builder-base"
	SectionStarLaboratory Section = "star-laboratory"
)

// SectionConfig describes a game area hosting worker slots.
type SectionConfig struct {
	ID           Section
	Title        string
	DefaultLevel string
	Unit         string
}

// DefaultSections lists the game areas in display order.
func DefaultSections() []SectionConfig {
	return []SectionConfig{
		{ID: SectionHomeVillage, Title: "Home Village", DefaultLevel: "5", Unit: "TH"},
		{ID: SectionLaboratory, Title: "Laboratory", DefaultLevel: "5", Unit: "lv"},
		{ID: SectionPetHouse, Title: "Pet House", DefaultLevel: "1", Unit: "lv"},
		{ID: SectionBuilderBase, Title: "Builder Base", DefaultLevel: "2", Unit: "BH"},
		{ID: SectionStarLaboratory, Title: "Star Laboratory", DefaultLevel: "5", Unit: "lv"},
	}
}

// SectionIndex maps each section id to its configuration.
func SectionIndex(sections []SectionConfig) map[Section]SectionConfig {
	out := make(map[Section]SectionConfig, len(sections))
	for _, s := range sections {
		out[s.ID] = s
	}
	return out
}
