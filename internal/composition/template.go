package composition

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Missing-key modes: step parameters must reference defined variables, guards
// treat an undefined variable as false
const (
	missingKeyError = "missingkey=error"
	missingKeyZero  = "missingkey=zero"
)

// processTemplate processes a single template string against data
func processTemplate(templateString string, data map[string]interface{}, missingKey string) (string, error) {
	// Only process if the string contains template markers
	if !strings.Contains(templateString, "{{") {
		return templateString, nil
	}

	tmpl, err := template.New("inline").Option(missingKey).Parse(templateString)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, data); err != nil {
		return "", err
	}

	return buffer.String(), nil
}

// processParameters renders every string parameter of step against data
func processParameters(step Step, data map[string]interface{}) (Step, error) {
	processed := make(map[string]interface{}, len(step.Parameters))
	for key, value := range step.Parameters {
		strValue, ok := value.(string)
		if !ok {
			processed[key] = value
			continue
		}

		rendered, err := processTemplate(strValue, data, missingKeyError)
		if err != nil {
			return step, fmt.Errorf("error processing template in step %s, parameter %s: %w", step.Name, key, err)
		}
		processed[key] = rendered
	}

	step.Parameters = processed
	return step, nil
}

// evaluateCondition renders condition and reports whether the result is truthy
func evaluateCondition(condition string, data map[string]interface{}) (bool, error) {
	result, err := processTemplate(condition, data, missingKeyZero)
	if err != nil {
		return false, err
	}

	return isTruthy(result), nil
}

func isTruthy(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}
