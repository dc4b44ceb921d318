package clipboard

import (
	"reflect"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	text := "https://a.test/page http://b.test, ftp://skip.test not-a-url"

	urls := ExtractURLs(text)
	want := []string{"https://a.test/page", "http://b.test"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Expected %v, got %v", want, urls)
	}
}

func TestExtractURLsMultiline(t *testing.T) {
	text := "https://a.test\nhttps://b.test\r\n\nhttps://c.test"

	urls := ExtractURLs(text)
	if len(urls) != 3 {
		t.Errorf("Expected 3 URLs, got %d: %v", len(urls), urls)
	}
}

func TestExtractURLsStripsWrappers(t *testing.T) {
	text := `<https://a.test> "https://b.test" 'https://c.test'`

	urls := ExtractURLs(text)
	want := []string{"https://a.test", "https://b.test", "https://c.test"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Expected %v, got %v", want, urls)
	}
}

func TestExtractURLsRequiresHost(t *testing.T) {
	urls := ExtractURLs("https:// http://")
	if len(urls) != 0 {
		t.Errorf("Expected no URLs, got %v", urls)
	}
}

func TestExtractURLsEmpty(t *testing.T) {
	if urls := ExtractURLs(""); len(urls) != 0 {
		t.Errorf("Expected no URLs from empty text, got %v", urls)
	}
}
