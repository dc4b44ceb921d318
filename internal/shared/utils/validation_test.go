package utils

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	valid := []string{"view_01J5", "abc-123", "A_B_C"}
	for _, id := range valid {
		if err := ValidateID(id, "id", true); err != nil {
			t.Errorf("ValidateID(%q) should pass: %v", id, err)
		}
	}

	invalid := []string{"", "has space", "semi;colon", "dot.ted", strings.Repeat("x", MaxIDLength+1)}
	for _, id := range invalid {
		if err := ValidateID(id, "id", true); err == nil {
			t.Errorf("ValidateID(%q) should fail", id)
		}
	}
}

func TestValidateToolID(t *testing.T) {
	if err := ValidateToolID("views.open", "tool_id", true); err != nil {
		t.Errorf("dotted tool ID should pass: %v", err)
	}

	if err := ValidateToolID("views open", "tool_id", true); err == nil {
		t.Error("tool ID with space should fail")
	}
}

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/path?a=1",
		"file:///home/user/doc.html",
		"not really a url but transportable",
	}
	for _, u := range valid {
		if err := ValidateURL(u, "url", true); err != nil {
			t.Errorf("ValidateURL(%q) should pass: %v", u, err)
		}
	}

	forbidden := []string{
		"javascript:alert(1)",
		"JAVASCRIPT:alert(1)",
		"data:text/html,<h1>x</h1>",
		"vbscript:msgbox",
		"  javascript:alert(1)",
	}
	for _, u := range forbidden {
		if err := ValidateURL(u, "url", true); err == nil {
			t.Errorf("ValidateURL(%q) should fail", u)
		}
	}

	if err := ValidateURL("", "url", true); err == nil {
		t.Error("empty required URL should fail")
	}
	if err := ValidateURL("", "url", false); err != nil {
		t.Errorf("empty optional URL should pass: %v", err)
	}

	long := "https://example.com/" + strings.Repeat("a", MaxURLLength)
	if err := ValidateURL(long, "url", true); err == nil {
		t.Error("oversized URL should fail")
	}
}

func TestValidateBatchURLs(t *testing.T) {
	if err := ValidateBatchURLs(nil); err == nil {
		t.Error("empty list should fail")
	}

	if err := ValidateBatchURLs([]string{"https://a.example", "https://b.example"}); err != nil {
		t.Errorf("valid list should pass: %v", err)
	}

	tooMany := make([]string, MaxBatchURLs+1)
	for i := range tooMany {
		tooMany[i] = "https://example.com"
	}
	if err := ValidateBatchURLs(tooMany); err == nil {
		t.Error("oversized list should fail")
	}

	if err := ValidateBatchURLs([]string{"https://ok.example", "javascript:alert(1)"}); err == nil {
		t.Error("list containing forbidden scheme should fail")
	}
}

func TestValidateSettingKey(t *testing.T) {
	if err := ValidateSettingKey("browser.user_agent"); err != nil {
		t.Errorf("dotted key should pass: %v", err)
	}

	for _, key := range []string{"", "Upper.Case", "has space", "dash-ed"} {
		if err := ValidateSettingKey(key); err == nil {
			t.Errorf("ValidateSettingKey(%q) should fail", key)
		}
	}
}

func TestValidateJSONDepth(t *testing.T) {
	shallow := map[string]interface{}{"a": []interface{}{"b"}}
	if err := ValidateJSONDepth(shallow, 5); err != nil {
		t.Errorf("shallow structure should pass: %v", err)
	}

	deep := interface{}("leaf")
	for i := 0; i < 10; i++ {
		deep = map[string]interface{}{"nested": deep}
	}
	if err := ValidateJSONDepth(deep, 5); err == nil {
		t.Error("deep structure should fail")
	}
}

func TestJSONSizeValidator(t *testing.T) {
	v := NewJSONSizeValidator(16)

	if err := v.ValidateJSON([]byte(`{"a":1}`)); err != nil {
		t.Errorf("small valid JSON should pass: %v", err)
	}

	if err := v.ValidateJSON([]byte(`{"a":"0123456789abcdef"}`)); err == nil {
		t.Error("oversized JSON should fail")
	}

	if err := v.ValidateJSON([]byte(`{"a":`)); err == nil {
		t.Error("malformed JSON should fail")
	}
}
