package heuristic

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/carbocation/dicombids/seqinfo"
	"github.com/google/go-cmp/cmp"
)

func TestAssignmentJSON(t *testing.T) {
	cases := []struct {
		a    Assignment
		want string
	}{
		{Bare("2-T1_MPRAGE"), `"2-T1_MPRAGE"`},
		{Typed("14-field_map", "fmap_type", "magnitude"), `{"fmap_type":"magnitude","item":"14-field_map"}`},
	}

	for _, c := range cases {
		got, err := json.Marshal(c.a)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != c.want {
			t.Errorf("got %s, want %s", got, c.want)
		}
	}
}

func TestInfoJSON(t *testing.T) {
	info := dprcAnat.Classify([]seqinfo.SeqInfo{seq("2-T1_MPRAGE", 208, 1, "T1_MPRAGE", "")})

	b, err := json.Marshal(info)
	if err != nil {
		t.Fatal(err)
	}

	var got []struct {
		Template string        `json:"template"`
		OutType  []string      `json:"outtype"`
		Items    []interface{} `json:"items"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}

	templates := make([]string, 0)
	for _, entry := range got {
		templates = append(templates, entry.Template)
		if diff := cmp.Diff([]string{"nii.gz"}, entry.OutType); diff != "" {
			t.Errorf("%s outtype (-want +got):\n%s", entry.Template, diff)
		}
	}

	wantTemplates := []string{
		"anat/sub-{subject}_T1w",
		"anat/sub-{subject}_T2w",
		"anat/sub-{subject}_flair",
		"dwi/sub-{subject}_acq-{dwi_type}_dwi",
	}
	if diff := cmp.Diff(wantTemplates, templates); diff != "" {
		t.Errorf("templates (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]interface{}{"2-T1_MPRAGE"}, got[0].Items); diff != "" {
		t.Errorf("T1w items (-want +got):\n%s", diff)
	}
	if got[3].Items == nil || len(got[3].Items) != 0 {
		t.Errorf("expected an empty DWI list, got %#v", got[3].Items)
	}
}

func TestInfoTSV(t *testing.T) {
	info := dprc.Classify([]seqinfo.SeqInfo{
		seq("2-T1_MPRAGE", 208, 1, "T1_MPRAGE", ""),
		seq("14-field_map", 128, 1, "field_map", ""),
	})

	var buf bytes.Buffer
	if err := info.WriteTSV(&buf); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"template\titem\ttype_field\ttype",
		"anat/sub-{subject}_T1w\t2-T1_MPRAGE\t\t",
		"fmap/sub-{subject}_{fmap_type}\t14-field_map\tfmap_type\tmagnitude",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("tsv (-want +got):\n%s", diff)
	}
}

func TestLookup(t *testing.T) {
	info := dprc.Classify(nil)

	k, items, ok := info.Lookup("swi/sub-{subject}_{swi_type}")
	if !ok || k != SWI || len(items) != 0 {
		t.Errorf("Lookup: got %v %v %v", k, items, ok)
	}

	if _, _, ok := info.Lookup("anat/sub-{subject}_T3w"); ok {
		t.Error("found a template that is not declared")
	}
}

func TestNew(t *testing.T) {
	p, err := New("dprc")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "dprc" || len(p.Keys) != 10 {
		t.Errorf("got profile %s with %d keys", p.Name, len(p.Keys))
	}

	p, err = New("dprc-anat")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Keys) != 4 {
		t.Errorf("got %d keys for dprc-anat", len(p.Keys))
	}

	if _, err := New("nope"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}

	if got := ProfileNames(); got != "dprc, dprc-anat" {
		t.Errorf("ProfileNames: got %q", got)
	}
}

func TestNewReturnsIndependentCopies(t *testing.T) {
	p, err := New(DPRC)
	if err != nil {
		t.Fatal(err)
	}

	for i := range p.Rules {
		p.Rules[i].Disabled = true
	}
	p.Keys[0] = nil

	again, err := New(DPRC)
	if err != nil {
		t.Fatal(err)
	}
	if err := again.Validate(); err != nil {
		t.Fatalf("registered profile was changed through a copy: %v", err)
	}

	info := again.Classify([]seqinfo.SeqInfo{seq("2-T1_MPRAGE", 208, 1, "T1_MPRAGE", "")})
	if diff := cmp.Diff([]Assignment{Bare("2-T1_MPRAGE")}, info[T1w]); diff != "" {
		t.Errorf("T1w (-want +got):\n%s", diff)
	}
}
