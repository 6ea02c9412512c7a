package pipeline

import (
	"strings"

	"github.com/moovs/dataprep/internal/schema"
)

// orderTypeAliases maps dispatch vocabulary onto the canonical order
// type list. Checked in order: multi-word aliases first so "airport
// pickup" resolves before the bare "airport" catches it.
var orderTypeAliases = []struct {
	keyword   string
	canonical string
}{
	{"airport pick up", "airport-pick-up"},
	{"airport pickup", "airport-pick-up"},
	{"airport pick-up", "airport-pick-up"},
	{"airport arrival", "airport-pick-up"},
	{"from airport", "airport-pick-up"},
	{"airport drop off", "airport-drop-off"},
	{"airport dropoff", "airport-drop-off"},
	{"airport drop-off", "airport-drop-off"},
	{"airport departure", "airport-drop-off"},
	{"to airport", "airport-drop-off"},
	{"airport transfer", "airport"},
	{"airport", "airport"},
	{"seaport", "seaport"},
	{"cruise", "seaport"},
	{"train", "train-station"},
	{"amtrak", "train-station"},
	{"wine tour", "wine-tour"},
	{"winery", "wine-tour"},
	{"wine", "wine-tour"},
	{"brewery", "brew-tour"},
	{"brew", "brew-tour"},
	{"wedding", "wedding"},
	{"bachelor", "bachelor-bachelorette"},
	{"bachelorette", "bachelor-bachelorette"},
	{"bridal", "bridal-party"},
	{"bride", "bride-groom"},
	{"groom", "bride-groom"},
	{"quincea", "quinceanera"},
	{"sweet 16", "sweet-16"},
	{"sweet sixteen", "sweet-16"},
	{"bar mitzvah", "bar-bat-mitzvah"},
	{"bat mitzvah", "bar-bat-mitzvah"},
	{"prom", "prom-homecoming"},
	{"homecoming", "prom-homecoming"},
	{"graduation", "graduation"},
	{"birthday 21", "birthday-21"},
	{"21st", "birthday-21"},
	{"kids birthday", "kids-birthday"},
	{"birthday", "birthday"},
	{"funeral", "funeral"},
	{"medical", "medical"},
	{"corporate", "corporate"},
	{"business", "business-trip"},
	{"concert", "concert"},
	{"sporting", "sporting-event"},
	{"sports", "sporting-event"},
	{"baseball", "baseball"},
	{"basketball", "basketball"},
	{"football", "football"},
	{"hockey", "hockey"},
	{"golf", "golf"},
	{"night out", "night-out"},
	{"night on the town", "night-out"},
	{"field trip", "field-trip"},
	{"school fundraiser", "school-fundraiser"},
	{"fundraiser", "school-fundraiser"},
	{"school", "school"},
	{"family reunion", "family-reunion"},
	{"reunion", "family-reunion"},
	{"holiday", "holiday"},
	{"retail", "retail"},
	{"leisure", "leisure"},
	{"personal", "personal-trip"},
	{"special occasion", "special-occasion"},
	{"charter", "point-to-point"},
	{"transfer", "point-to-point"},
	{"one way", "point-to-point"},
	{"point to point", "point-to-point"},
	{"hourly", "point-to-point"},
	{"as directed", "point-to-point"},
}

// NormalizeOrderType maps a raw dispatch order type onto the canonical
// vocabulary: already-canonical values pass through lowercased, then
// exact alias match, then first substring alias hit, else the
// point-to-point default.
func NormalizeOrderType(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return schema.DefaultOrderType
	}
	if schema.ValidOrderType(v) {
		return v
	}
	for _, a := range orderTypeAliases {
		if v == a.keyword {
			return a.canonical
		}
	}
	for _, a := range orderTypeAliases {
		if strings.Contains(v, a.keyword) {
			return a.canonical
		}
	}
	return schema.DefaultOrderType
}
