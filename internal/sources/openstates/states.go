package openstates

import "strings"

// State identifies one jurisdiction: the OCD identifier the API wants
// and the two-letter code used for partitions, checkpoints and logs.
type State struct {
	OCDID string
	Abbr  string
}

// States lists the 49 swept state jurisdictions in order. New York is
// deliberately absent, matching the upstream sweep list; restoring it
// needs coordination with the dashboard's state coverage.
var States = []State{
	{"ocd-jurisdiction/country:us/state:al/government", "AL"},
	{"ocd-jurisdiction/country:us/state:ak/government", "AK"},
	{"ocd-jurisdiction/country:us/state:az/government", "AZ"},
	{"ocd-jurisdiction/country:us/state:ar/government", "AR"},
	{"ocd-jurisdiction/country:us/state:ca/government", "CA"},
	{"ocd-jurisdiction/country:us/state:co/government", "CO"},
	{"ocd-jurisdiction/country:us/state:ct/government", "CT"},
	{"ocd-jurisdiction/country:us/state:de/government", "DE"},
	{"ocd-jurisdiction/country:us/state:fl/government", "FL"},
	{"ocd-jurisdiction/country:us/state:ga/government", "GA"},
	{"ocd-jurisdiction/country:us/state:hi/government", "HI"},
	{"ocd-jurisdiction/country:us/state:id/government", "ID"},
	{"ocd-jurisdiction/country:us/state:il/government", "IL"},
	{"ocd-jurisdiction/country:us/state:in/government", "IN"},
	{"ocd-jurisdiction/country:us/state:ia/government", "IA"},
	{"ocd-jurisdiction/country:us/state:ks/government", "KS"},
	{"ocd-jurisdiction/country:us/state:ky/government", "KY"},
	{"ocd-jurisdiction/country:us/state:la/government", "LA"},
	{"ocd-jurisdiction/country:us/state:me/government", "ME"},
	{"ocd-jurisdiction/country:us/state:md/government", "MD"},
	{"ocd-jurisdiction/country:us/state:ma/government", "MA"},
	{"ocd-jurisdiction/country:us/state:mi/government", "MI"},
	{"ocd-jurisdiction/country:us/state:mn/government", "MN"},
	{"ocd-jurisdiction/country:us/state:ms/government", "MS"},
	{"ocd-jurisdiction/country:us/state:mo/government", "MO"},
	{"ocd-jurisdiction/country:us/state:mt/government", "MT"},
	{"ocd-jurisdiction/country:us/state:ne/government", "NE"},
	{"ocd-jurisdiction/country:us/state:nv/government", "NV"},
	{"ocd-jurisdiction/country:us/state:nh/government", "NH"},
	{"ocd-jurisdiction/country:us/state:nj/government", "NJ"},
	{"ocd-jurisdiction/country:us/state:nm/government", "NM"},
	{"ocd-jurisdiction/country:us/state:nc/government", "NC"},
	{"ocd-jurisdiction/country:us/state:nd/government", "ND"},
	{"ocd-jurisdiction/country:us/state:oh/government", "OH"},
	{"ocd-jurisdiction/country:us/state:ok/government", "OK"},
	{"ocd-jurisdiction/country:us/state:or/government", "OR"},
	{"ocd-jurisdiction/country:us/state:pa/government", "PA"},
	{"ocd-jurisdiction/country:us/state:ri/government", "RI"},
	{"ocd-jurisdiction/country:us/state:sc/government", "SC"},
	{"ocd-jurisdiction/country:us/state:sd/government", "SD"},
	{"ocd-jurisdiction/country:us/state:tn/government", "TN"},
	{"ocd-jurisdiction/country:us/state:tx/government", "TX"},
	{"ocd-jurisdiction/country:us/state:ut/government", "UT"},
	{"ocd-jurisdiction/country:us/state:vt/government", "VT"},
	{"ocd-jurisdiction/country:us/state:va/government", "VA"},
	{"ocd-jurisdiction/country:us/state:wa/government", "WA"},
	{"ocd-jurisdiction/country:us/state:wv/government", "WV"},
	{"ocd-jurisdiction/country:us/state:wi/government", "WI"},
	{"ocd-jurisdiction/country:us/state:wy/government", "WY"},
}

// SelectStates resolves the partition list for a run. Bare targets
// restrict the sweep to those states; startFrom skips everything before
// the named state (and ignores completed-state bookkeeping, since the
// caller is overriding it). With neither, the full list is returned.
func SelectStates(targets []string, startFrom string) []State {
	startFrom = strings.ToUpper(strings.TrimSpace(startFrom))
	if startFrom != "" {
		for i, s := range States {
			if s.Abbr == startFrom {
				return States[i:]
			}
		}
		return States
	}

	if len(targets) == 0 {
		return States
	}
	wanted := make(map[string]bool, len(targets))
	for _, t := range targets {
		wanted[strings.ToUpper(strings.TrimSpace(t))] = true
	}
	var selected []State
	for _, s := range States {
		if wanted[s.Abbr] {
			selected = append(selected, s)
		}
	}
	return selected
}
