package utils

import (
	"strings"

	"github.com/google/uuid"
)

var invalidFilenameChars = []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*", " "}

// SanitizeFilename 把文件名中的非法字符和空格替换为下划线。
func SanitizeFilename(name string) string {
	for _, ch := range invalidFilenameChars {
		name = strings.ReplaceAll(name, ch, "_")
	}
	return name
}

// UniqueFilename 生成 prefix_<uuid片段>.ext 形式的文件名。
// 纯时间戳命名在并发请求下会互相覆盖，这里带随机片段避免冲突。
func UniqueFilename(prefix, ext string) string {
	fragment := strings.Split(uuid.NewString(), "-")[0]
	return SanitizeFilename(prefix) + "_" + fragment + "." + ext
}
