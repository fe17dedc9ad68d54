package server

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestGenerateNickname(t *testing.T) {
	t.Parallel()

	for range 50 {
		name := GenerateNickname()
		adj, noun, ok := strings.Cut(name, " ")
		assert.True(t, ok, name)
		assert.Contains(t, adjectives, adj)
		assert.Contains(t, nouns, noun)
		// 昵称也要满足改名时的长度限制
		assert.LessOrEqual(t, utf8.RuneCountInString(name), 20)
	}
}
