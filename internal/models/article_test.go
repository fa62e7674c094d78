package models

import (
	"reflect"
	"testing"
)

func TestArticleID(t *testing.T) {
	id := ArticleID("https://example.com/story", "Kenya election results")

	if len(id) != 32 {
		t.Errorf("ArticleID length = %d, want 32 hex chars", len(id))
	}
	if id != ArticleID("https://example.com/story", "Kenya election results") {
		t.Error("ArticleID is not deterministic for identical input")
	}
	if id == ArticleID("https://example.com/story", "Kenya election result") {
		t.Error("ArticleID collides for different titles")
	}
	if id == ArticleID("https://example.com/other", "Kenya election results") {
		t.Error("ArticleID collides for different URLs")
	}
}

func TestStringListValue(t *testing.T) {
	tests := []struct {
		name string
		list StringList
		want string
	}{
		{"nil list", nil, "[]"},
		{"empty list", StringList{}, "[]"},
		{"values", StringList{"kenya", "nigeria"}, `["kenya","nigeria"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.list.Value()
			if err != nil {
				t.Fatalf("Value() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringListScan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    StringList
		wantErr bool
	}{
		{"nil column", nil, StringList{}, false},
		{"bytes", []byte(`["kenya","ghana"]`), StringList{"kenya", "ghana"}, false},
		{"string", `["nigeria"]`, StringList{"nigeria"}, false},
		{"unsupported type", 42, nil, true},
		{"malformed json", []byte(`{`), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			err := got.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan(%v) error = %v, wantErr %v", tt.src, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scan(%v) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestStringListContains(t *testing.T) {
	list := StringList{"kenya", "South-Africa"}

	if !list.Contains("kenya") {
		t.Error("Contains(kenya) = false, want true")
	}
	if !list.Contains("south-africa") {
		t.Error("Contains is not case-insensitive")
	}
	if list.Contains("ghana") {
		t.Error("Contains(ghana) = true, want false")
	}
	if (StringList)(nil).Contains("kenya") {
		t.Error("nil list should contain nothing")
	}
}
