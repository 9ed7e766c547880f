package util

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultReadTime = "0 min read"
	wordsPerMinute  = 200
	summaryMaxRunes = 200
)

var (
	codeBlockRegex  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRegex = regexp.MustCompile("`[^`]*`")
	imageRegex      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRegex       = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)
	markRegex       = regexp.MustCompile("[#>*_~`]")
	spaceRegex      = regexp.MustCompile(`\s+`)
	latinWordRegex  = regexp.MustCompile(`[A-Za-z0-9]+`)
	cjkCharRegex    = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
	summaryMarkRe   = regexp.MustCompile("[#*`\\[\\]()]")
)

func cleanMarkdown(content string) string {
	s := codeBlockRegex.ReplaceAllString(content, " ")
	s = inlineCodeRegex.ReplaceAllString(s, " ")
	s = imageRegex.ReplaceAllString(s, " ")
	s = linkRegex.ReplaceAllString(s, " ")
	s = markRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

// WordCount 拉丁单词数 + 中文字符数，代码块与链接不计
func WordCount(content string) int {
	if content == "" {
		return 0
	}
	plain := cleanMarkdown(content)
	return len(latinWordRegex.FindAllString(plain, -1)) + len(cjkCharRegex.FindAllString(plain, -1))
}

// ReadTime 每分钟 200 个单位，向上取整，最少 1 分钟
func ReadTime(content string) string {
	count := WordCount(content)
	if count <= 0 {
		return DefaultReadTime
	}
	minutes := (count + wordsPerMinute - 1) / wordsPerMinute
	return fmt.Sprintf("%d min read", minutes)
}

// Summary 去掉 markdown 标记后截取前 200 个字符
func Summary(content string) string {
	if content == "" {
		return ""
	}
	plain := strings.TrimSpace(spaceRegex.ReplaceAllString(summaryMarkRe.ReplaceAllString(content, ""), " "))
	if utf8.RuneCountInString(plain) <= summaryMaxRunes {
		return plain
	}
	return string([]rune(plain)[:summaryMaxRunes]) + "..."
}
