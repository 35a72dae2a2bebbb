package composition

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	commonerrors "github.com/deploymenttheory/go-interactor/internal/common/errors"
)

const signupWorkflow = `
name: signup
description: create a user and notify when one is missing
variables:
  user: ""
guards:
  user_missing: '{{ if not .user }}true{{ end }}'
steps:
  - name: fetch
    type: set
    user: ada
  - name: notify
    type: set
    if: user_missing
    notified: "yes"
  - name: check
    type: assert
    expect: '{{ if .user }}true{{ end }}'
    message: user must be present
`

func TestParseWorkflow(t *testing.T) {
	wf, err := ParseWorkflow([]byte(signupWorkflow), "yaml")
	if err != nil {
		t.Fatalf("ParseWorkflow failed: %v", err)
	}

	if wf.Name != "signup" || len(wf.Steps) != 3 {
		t.Fatalf("workflow = %+v", wf)
	}
	if wf.Steps[1].If != "user_missing" {
		t.Errorf("notify.if = %q", wf.Steps[1].If)
	}
	if wf.Steps[0].Parameters["user"] != "ada" {
		t.Errorf("fetch parameters = %v", wf.Steps[0].Parameters)
	}
	if _, ok := wf.Guards["user_missing"]; !ok {
		t.Errorf("guards = %v", wf.Guards)
	}
	if errs := ValidateWorkflow(wf); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestLoadWorkflowFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signup.yaml")
	if err := os.WriteFile(path, []byte(signupWorkflow), 0644); err != nil {
		t.Fatal(err)
	}

	wf, err := LoadWorkflow(path)
	if err != nil {
		t.Fatalf("LoadWorkflow failed: %v", err)
	}
	if wf.Name != "signup" {
		t.Errorf("name = %q", wf.Name)
	}

	if _, err := LoadWorkflow(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, commonerrors.ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestParseWorkflowJSON(t *testing.T) {
	wf, err := ParseWorkflow([]byte(`{"name": "j", "steps": [{"name": "a", "type": "set", "k": "v"}]}`), "json")
	if err != nil {
		t.Fatalf("ParseWorkflow failed: %v", err)
	}
	if len(wf.Steps) != 1 || wf.Steps[0].Parameters["k"] != "v" {
		t.Errorf("steps = %+v", wf.Steps)
	}
}

func TestValidateWorkflow(t *testing.T) {
	wf := &Workflow{
		Steps: []Step{
			{Name: "a", Type: "set"},
			{Name: "a", Type: "set"},
			{Name: "b", Type: "teleport"},
			{Name: "c", Type: "hash"},
			{Name: "d", Type: "set", If: "g", Condition: "true"},
			{Type: "set"},
		},
	}

	errs := ValidateWorkflow(wf)
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	joined := strings.Join(msgs, "\n")

	for _, want := range []string{
		"workflow name is required",
		"step 2 (a): duplicate step name",
		"step 3 (b): unknown step type 'teleport'",
		"step 4 (c): missing required parameter 'input'",
		"step 5 (d): 'if' and 'condition' are mutually exclusive",
		"step 6: name is required",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing validation error %q in:\n%s", want, joined)
		}
	}

	var unknown, missing bool
	for _, err := range errs {
		unknown = unknown || errors.Is(err, commonerrors.ErrUnknownStepType)
		missing = missing || errors.Is(err, commonerrors.ErrMissingParameter)
	}
	if !unknown || !missing {
		t.Error("validation errors should wrap their sentinels")
	}
}

func TestValidateWorkflowIgnoresUnknownGuards(t *testing.T) {
	wf := &Workflow{Name: "x", Steps: []Step{{Name: "a", Type: "set", If: "nowhere"}}}
	if errs := ValidateWorkflow(wf); len(errs) != 0 {
		t.Errorf("guard names are resolved at run time, got %v", errs)
	}
}

func TestProcessTemplate(t *testing.T) {
	data := map[string]interface{}{"name": "app", "flag": true}

	tests := []struct {
		in, missingKey, want string
		wantErr              bool
	}{
		{in: "plain", missingKey: missingKeyError, want: "plain"},
		{in: "{{ .name }}.zip", missingKey: missingKeyError, want: "app.zip"},
		{in: "{{ if .flag }}true{{ end }}", missingKey: missingKeyError, want: "true"},
		{in: "{{ if .absent }}true{{ end }}", missingKey: missingKeyZero, want: ""},
		{in: "{{ .dirr }}/out", missingKey: missingKeyError, wantErr: true},
		{in: "{{ .name ", missingKey: missingKeyZero, wantErr: true},
	}
	for _, tt := range tests {
		got, err := processTemplate(tt.in, data, tt.missingKey)
		if tt.wantErr {
			if err == nil {
				t.Errorf("processTemplate(%q, %s) = %q, want error", tt.in, tt.missingKey, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("processTemplate(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("processTemplate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	for _, s := range []string{"true", " YES ", "1"} {
		if !isTruthy(s) {
			t.Errorf("isTruthy(%q) = false", s)
		}
	}
	for _, s := range []string{"", "false", "no", "0", "<no value>"} {
		if isTruthy(s) {
			t.Errorf("isTruthy(%q) = true", s)
		}
	}
}
