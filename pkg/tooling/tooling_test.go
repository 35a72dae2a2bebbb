package tooling

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	commonerrors "github.com/deploymenttheory/go-interactor/internal/common/errors"
)

func init() {
	_ = Initialize(InitOptions{SuppressLog: true})
}

func TestExecuteWorkflowFromYAML(t *testing.T) {
	result, err := ExecuteWorkflowFromYAML(context.Background(), `
name: greet
variables:
  who: world
steps:
  - name: hello
    type: set
    greeting: 'hello {{ .who }}'
`)
	if err != nil {
		t.Fatalf("ExecuteWorkflowFromYAML failed: %v", err)
	}

	if !result.Success {
		t.Errorf("result = %+v", result)
	}
	if result.Variables["greeting"] != "hello world" {
		t.Errorf("greeting = %v", result.Variables["greeting"])
	}
	if len(result.Called) == 0 || result.Called[0] != "hello" {
		t.Errorf("called = %v", result.Called)
	}
}

func TestExecuteWorkflowFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fail.yaml")
	err := os.WriteFile(path, []byte(`
name: fail
steps:
  - name: check
    type: assert
    expect: "false"
  - name: after
    type: set
    reached: "yes"
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	result, err := ExecuteWorkflow(context.Background(), path)
	if !errors.Is(err, commonerrors.ErrAssertionFailed) {
		t.Fatalf("err = %v, want ErrAssertionFailed", err)
	}
	if result.Success || result.ErrorMessage == "" {
		t.Errorf("result = %+v", result)
	}
	if _, ok := result.Variables["reached"]; ok {
		t.Error("step after the failure ran")
	}
}

func TestExecuteWorkflowInvalid(t *testing.T) {
	result, err := ExecuteWorkflowFromYAML(context.Background(), `
steps:
  - name: x
    type: set
`)
	if !errors.Is(err, commonerrors.ErrInvalidWorkflow) {
		t.Fatalf("err = %v, want ErrInvalidWorkflow", err)
	}
	if result.Success {
		t.Error("invalid workflow reported success")
	}
}
