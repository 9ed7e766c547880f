package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadTime(t *testing.T) {
	assert.Equal(t, "0 min read", ReadTime(""))
	assert.Equal(t, "0 min read", ReadTime("```go\nfmt.Println()\n```"))
	assert.Equal(t, "1 min read", ReadTime("# Hello world"))
	assert.Equal(t, "1 min read", ReadTime("你好世界"))
	assert.Equal(t, "2 min read", ReadTime(strings.Repeat("word ", 201)))
	assert.Equal(t, "2 min read", ReadTime(strings.Repeat("番", 300)))
}

func TestWordCount_IgnoresLinksAndCode(t *testing.T) {
	assert.Equal(t, 2, WordCount("hello `code here` world ![img](a.png) [link](b)"))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "", Summary(""))
	assert.Equal(t, "Title text link", Summary("# Title\n\n*text* [link]"))

	long := strings.Repeat("新", 250)
	s := Summary(long)
	assert.True(t, strings.HasSuffix(s, "..."))
	assert.Equal(t, 203, len([]rune(s)))
}

func TestLegacyUserID(t *testing.T) {
	assert.Equal(t, "Bob", LegacyUserID(" Bob ", "x"))
	assert.Equal(t, "%E5%B0%8F%E6%98%8E", LegacyUserID("小明", "x"))
	assert.Equal(t, "a%20b!", LegacyUserID("a b!", "x"))
	assert.Equal(t, "x", LegacyUserID("游客", "x"))
	assert.Equal(t, "guest", LegacyUserID("匿名", ""))
}

func TestSameName(t *testing.T) {
	assert.True(t, SameName("BOB", "bob"))
	assert.True(t, SameName("%E5%B0%8F%E6%98%8E", "小明"))
	assert.False(t, SameName("", ""))
	assert.False(t, SameName("alice", "bob"))
}

func TestLoginValidation(t *testing.T) {
	assert.True(t, ValidLoginID("alice"))
	assert.False(t, ValidLoginID(""))
	assert.False(t, ValidLoginID("al ice"))
	assert.False(t, ValidLoginID("tab\tid"))
	assert.False(t, ValidLoginID(strings.Repeat("a", 65)))
	assert.True(t, ValidLoginID(strings.Repeat("中", 64)))

	assert.True(t, ValidPassword("longenough"))
	assert.False(t, ValidPassword("short"))
}

func TestDedupTags(t *testing.T) {
	assert.Equal(t, []string{"go", "动漫"}, DedupTags([]string{" go", "#go", "", "动漫", "动漫"}))
}
