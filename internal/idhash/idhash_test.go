package idhash

import (
	"testing"
)

func TestComputeArticleID(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		title string
		want  string
	}{
		{
			name:  "known value",
			url:   "https://example.com/a",
			title: "Solana Hits Record",
			want:  "0492e558b787fc833e965ca06c3cfe7b2c333f1334aa5efab6932ef22a457b82",
		},
		{
			name:  "title case and padding ignored",
			url:   " https://example.com/a ",
			title: "  SOLANA HITS RECORD ",
			want:  "0492e558b787fc833e965ca06c3cfe7b2c333f1334aa5efab6932ef22a457b82",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeArticleID(tt.url, tt.title)

			if len(got) != 64 {
				t.Errorf("ComputeArticleID() length = %d, want 64", len(got))
			}

			if got != tt.want {
				t.Errorf("ComputeArticleID() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeArticleID_DifferentURL(t *testing.T) {
	a := ComputeArticleID("https://example.com/a", "Same title")
	b := ComputeArticleID("https://example.com/b", "Same title")

	if a == b {
		t.Error("different URLs should produce different ids")
	}
}

func TestComputeParamsHash(t *testing.T) {
	got := ComputeParamsHash("news", []byte(`{"limit":5}`))
	want := "4b0e57e328071863cbc58670d08956de082a29109a9e2bb9c35fe9f249a282fe"

	if got != want {
		t.Errorf("ComputeParamsHash() = %s, want %s", got, want)
	}

	if ComputeParamsHash("news", []byte(`{"limit":6}`)) == got {
		t.Error("different params should produce different hashes")
	}
}
