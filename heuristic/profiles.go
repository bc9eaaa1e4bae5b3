package heuristic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Output categories used by the DPRC heuristics.
var (
	T1w       = MustCreateKey("anat/sub-{subject}_T1w", nil, nil)
	T2w       = MustCreateKey("anat/sub-{subject}_T2w", nil, nil)
	FLAIR     = MustCreateKey("anat/sub-{subject}_flair", nil, nil)
	DWI       = MustCreateKey("dwi/sub-{subject}_acq-{dwi_type}_dwi", nil, nil)
	DWISBRef  = MustCreateKey("dwi/sub-{subject}_sbref", nil, nil)
	ASL       = MustCreateKey("asl/sub-{subject}_task-rest_asl", nil, nil)
	Rest      = MustCreateKey("func/sub-{subject}_task-rest_bold", nil, nil)
	RestSBRef = MustCreateKey("func/sub-{subject}_task-rest_sbref", nil, nil)
	Fmap      = MustCreateKey("fmap/sub-{subject}_{fmap_type}", nil, nil)
	SWI       = MustCreateKey("swi/sub-{subject}_{swi_type}", nil, nil)
)

var anatRules = []Rule{
	{Name: "T1w", Key: T1w, Style: Overwrite, Match: All(Dim3(208), Dim4(1), ProtocolContains("T1"))},
	{Name: "T2w", Key: T2w, Style: Overwrite, Match: ProtocolContains("T2_BLADE")},
	{Name: "FLAIR", Key: FLAIR, Style: Overwrite, Match: ProtocolContains("T2_FLAIR")},
}

// Names of the registered profiles.
const (
	DPRC     = "dprc"
	DPRCAnat = "dprc-anat"
)

// dprc is the full heuristic: anatomy, diffusion, perfusion, resting-state
// BOLD, field maps and SWI.
//
// ASL and SWI get their own top-level folders. BIDS had not settled where
// either belongs when these were written (SWI can produce many files
// alongside QSM), so neither goes under anat or func.
var dprc = Profile{
	Name:        DPRC,
	Description: "anat, dwi, asl, func, fmap and swi",
	Keys:        []*TemplateKey{T1w, T2w, FLAIR, DWI, DWISBRef, ASL, Rest, RestSBRef, Fmap, SWI},
	Rules: append(append([]Rule{}, anatRules...), []Rule{
		// diffusion
		{Name: "DWI data", Key: DWI, Style: Append, TypeField: "dwi_type", Label: "data", Match: All(Dim4(105), ProtocolContains("Diff"))},
		{Name: "DWI BU", Key: DWI, Style: Append, TypeField: "dwi_type", Label: "BU", Match: DescriptionContains("BU_AP")},
		{Name: "DWI BD1", Key: DWI, Style: Append, TypeField: "dwi_type", Label: "BD1", Match: DescriptionContains("BD_PA_1")},
		{Name: "DWI BD2", Key: DWI, Style: Append, TypeField: "dwi_type", Label: "BD2", Match: DescriptionContains("BD_PA_2")},
		{Name: "DWI BD3", Key: DWI, Style: Append, TypeField: "dwi_type", Label: "BD3", Match: DescriptionContains("BD_PA_3")},
		{Name: "DWI sbref", Key: DWISBRef, Style: Overwrite, Match: DescriptionContains("Diff_MB3_SBRef")},

		// perfusion
		{Name: "ASL", Key: ASL, Style: Overwrite, Match: All(Dim4(17), ProtocolContains("pcasl"))},

		// functional
		{Name: "rest", Key: Rest, Style: Overwrite, Match: All(Dim4(490), ProtocolContains("bold"))},
		{Name: "rest sbref", Key: RestSBRef, Style: Overwrite, Match: All(Dim4(1), ProtocolContains("bold"))},

		// field map
		{Name: "fmap magnitude", Key: Fmap, Style: Append, TypeField: "fmap_type", Label: "magnitude", Match: All(Dim3(128), ProtocolContains("field_map"))},
		{Name: "fmap phasediff", Key: Fmap, Style: Append, TypeField: "fmap_type", Label: "phasediff", Match: All(Dim3(64), ProtocolContains("field_map"))},

		// susceptibility weighted
		{Name: "SWI magnitude", Key: SWI, Style: Append, TypeField: "swi_type", Label: "part-mag_GRE", Match: All(ProtocolContains("SWI"), DescriptionContains("Mag"))},
		{Name: "SWI phase", Key: SWI, Style: Append, TypeField: "swi_type", Label: "part-phase_GRE", Match: All(ProtocolContains("SWI"), DescriptionContains("Pha"))},
		{Name: "SWI minIP", Key: SWI, Style: Append, TypeField: "swi_type", Label: "minIP", Match: All(ProtocolContains("SWI"), DescriptionContains("mIP"))},
		{Name: "SWI", Key: SWI, Style: Append, TypeField: "swi_type", Label: "swi", Match: All(ProtocolContains("SWI"), DescriptionContains("SWI"))},
	}...),
}

// dprcAnat is the older anatomy-only heuristic. It declares the DWI category
// but its rule is switched off, so DWI always comes back empty.
var dprcAnat = Profile{
	Name:        DPRCAnat,
	Description: "anat only; dwi declared but never filled",
	Keys:        []*TemplateKey{T1w, T2w, FLAIR, DWI},
	Rules: append(append([]Rule{}, anatRules...),
		Rule{Name: "DWI data", Key: DWI, Style: Append, TypeField: "dwi_type", Label: "data", Match: All(Dim4(105), ProtocolContains("Diff")), Disabled: true},
	),
}

// ErrUnknownProfile is returned by New for a name that is not registered.
var ErrUnknownProfile = errors.New("unknown heuristic profile")

// profiles holds every heuristic by name. Callers only ever see copies, handed
// out by New, so the tables validated at init stay as they are.
var profiles = map[string]Profile{
	dprc.Name:     dprc,
	dprcAnat.Name: dprcAnat,
}

func init() {
	for name, p := range profiles {
		if err := p.Validate(); err != nil {
			panic(fmt.Sprintf("heuristic profile %s: %v", name, err))
		}
	}
}

// ProfileNames returns the registered profile names, sorted and comma
// separated.
func ProfileNames() string {
	names := make([]string, 0, len(profiles))
	for m := range profiles {
		names = append(names, m)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

// New looks up a profile by name and returns a copy of it that the caller is
// free to modify.
func New(name string) (Profile, error) {
	p, exists := profiles[name]
	if !exists {
		return Profile{}, fmt.Errorf("%w: %s is not found. Valid profile names include: %s", ErrUnknownProfile, name, ProfileNames())
	}

	return p.clone(), nil
}
