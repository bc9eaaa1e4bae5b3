package heuristic

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCreateKeyRejectsEmptyTemplate(t *testing.T) {
	k, err := CreateKey("", nil, nil)
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
	if k != nil {
		t.Errorf("expected no key, got %v", k)
	}
	if !strings.HasPrefix(err.Error(), "heuristic.CreateKey: ") {
		t.Errorf("expected the error to name its caller, got %q", err)
	}
}

func TestCreateKeyDefaults(t *testing.T) {
	k, err := CreateKey("anat/sub-{subject}_T1w", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if k.Template() != "anat/sub-{subject}_T1w" {
		t.Errorf("template: got %q", k.Template())
	}
	if diff := cmp.Diff([]string{"nii.gz"}, k.OutType()); diff != "" {
		t.Errorf("outtype (-want +got):\n%s", diff)
	}
	if k.AnnotationClasses() != nil {
		t.Errorf("expected no annotation classes, got %v", k.AnnotationClasses())
	}
}

func TestTemplateKeyIsImmutable(t *testing.T) {
	outType := []string{"nii.gz", "dicom"}
	classes := []string{"rest"}

	k, err := CreateKey("func/sub-{subject}_task-rest_bold", outType, classes)
	if err != nil {
		t.Fatal(err)
	}

	outType[0] = "changed"
	classes[0] = "changed"
	k.OutType()[1] = "changed"

	if diff := cmp.Diff([]string{"nii.gz", "dicom"}, k.OutType()); diff != "" {
		t.Errorf("outtype changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"rest"}, k.AnnotationClasses()); diff != "" {
		t.Errorf("annotation classes changed (-want +got):\n%s", diff)
	}
}

func TestMustCreateKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an empty template")
		}
	}()

	MustCreateKey("", nil, nil)
}
