package index

import (
	"reflect"
	"testing"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			"lowercases and splits",
			"Dynamic Programming",
			[]string{"dynamic", "programming"},
		},
		{
			"strips punctuation",
			"f(n) = f(n-1) + f(n-2), memoization!",
			[]string{"memoization"},
		},
		{
			"drops short tokens",
			"go is a language",
			[]string{"language"},
		},
		{
			"drops stopwords",
			"this is the time for many good things",
			[]string{"things"},
		},
		{
			"keeps duplicates in order",
			"graph graph traversal",
			[]string{"graph", "graph", "traversal"},
		},
		{
			"empty input",
			"",
			nil,
		},
		{
			"only stopwords and short tokens",
			"the and a is",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeywordsDeterministic(t *testing.T) {
	text := "Today we'll cover dynamic programming and graph algorithms."
	first := Keywords(text)
	second := Keywords(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Keywords is not deterministic: %v vs %v", first, second)
	}
}

func TestQueryKeywordsMatchesIndexSide(t *testing.T) {
	text := "What is dynamic programming?"
	if !reflect.DeepEqual(QueryKeywords(text), Keywords(text)) {
		t.Error("query normalization must match index normalization")
	}
}
